package cli

import "github.com/google/uuid"

// RunIDGenerator names batch runs.
type RunIDGenerator interface {
	Generate() string
}

// UUIDGenerator generates UUIDv7 run ids, which sort by creation time.
type UUIDGenerator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (o *RootOptions) runIDs() RunIDGenerator {
	if o.RunIDs == nil {
		return UUIDGenerator{}
	}
	return o.RunIDs
}
