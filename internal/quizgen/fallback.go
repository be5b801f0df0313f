package quizgen

// Fallback returns the static quiz posted when generation gives up.
// Each call returns a fresh copy.
func Fallback() Record {
	return Record{
		Question: "What is the difference between 'include' and 'extend' in Ruby?",
		Options: []string{
			"Include adds methods as instance methods",
			"Extend adds methods as class methods",
			"Both add instance methods",
			"Neither adds methods",
		},
		CorrectOptionID: 0,
		Explanation:     "'include' mixes in module methods as instance methods; 'extend' does so for class methods.",
	}
}
