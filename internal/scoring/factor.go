package scoring

// Direction states which end of a factor's raw scale contributes to
// susceptibility.
type Direction string

const (
	// HigherIsWorse: larger raw values contribute more to susceptibility
	// (e.g. lake area).
	HigherIsWorse Direction = "higher_is_worse"
	// LowerIsWorse: smaller raw values contribute more (e.g. distance to the
	// mother glacier).
	LowerIsWorse Direction = "lower_is_worse"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == HigherIsWorse || d == LowerIsWorse
}

// Factor describes one susceptibility input column. Immutable for the
// duration of a run. Unit is documentation only; the engine never converts.
type Factor struct {
	Name      string    `json:"name" yaml:"name"`
	Direction Direction `json:"direction" yaml:"direction"`
	Unit      string    `json:"unit,omitempty" yaml:"unit,omitempty"`
}
