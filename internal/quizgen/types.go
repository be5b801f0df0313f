package quizgen

// Record is one quiz poll: a question, four answer options, the index of the
// correct one, and a short explanation shown after answering. Its JSON form is
// the shape the model is asked to produce.
type Record struct {
	Question        string   `json:"question" validate:"required,max=300"`
	Options         []string `json:"options" validate:"len=4,unique,dive,required,max=100"`
	CorrectOptionID int      `json:"correct_option_id" validate:"min=0,max=3"`
	Explanation     string   `json:"explanation" validate:"max=200"`
}

// Source tells whether a record came from the model or is the static fallback.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Result is the tagged outcome of Produce.
type Result struct {
	Record Record
	Source Source

	// Attempts is how many generation attempts were made.
	Attempts int

	// Err is the last attempt's error when Source is SourceFallback.
	// It wraps ErrExhausted.
	Err error
}

// Fallback reports whether the record is the static fallback.
func (r Result) Fallback() bool {
	return r.Source == SourceFallback
}
