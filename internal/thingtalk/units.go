package thingtalk

// baseUnits maps each supported unit to the base unit of its dimension.
var baseUnits = map[string]string{
	"m": "m", "km": "m", "cm": "m", "mm": "m", "mi": "m", "ft": "m", "in": "m", "yd": "m",
	"m2": "m2", "km2": "m2", "ha": "m2", "mi2": "m2", "ft2": "m2",
	"m3": "m3", "l": "m3", "ml": "m3", "gal": "m3",
	"kg": "kg", "g": "kg", "mg": "kg", "lb": "kg", "oz": "kg", "t": "kg",
	"C": "C", "F": "C", "K": "C",
	"ms": "ms", "s": "ms", "min": "ms", "h": "ms", "day": "ms", "week": "ms", "mon": "ms", "year": "ms",
	"mps": "mps", "kmph": "mps", "mph": "mps",
	"byte": "byte", "KB": "byte", "MB": "byte", "GB": "byte", "TB": "byte",
}

// BaseUnit returns the base unit of unit's dimension, or "" for an unknown
// unit.
func BaseUnit(unit string) string {
	return baseUnits[unit]
}
