package harness

// Outcome is what one case produced: a program or an error.
type Outcome struct {
	Case    string `json:"case"`
	Program string `json:"program,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failed reports whether the case ended in an error.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per case, in case order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcome returns the outcome of the case with the given id.
func (r *Result) Outcome(id string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Case == id {
			return o, true
		}
	}
	return Outcome{}, false
}
