package engine

// Kind tags a Result.
type Kind int

const (
	// KindNoMatch means the evaluator does not own the command, or could
	// not make sense of it.
	KindNoMatch Kind = iota
	KindValue
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindError:
		return "error"
	default:
		return "no_match"
	}
}

// Result is what every evaluator returns. Evaluators never return Go errors
// and never panic past their boundary.
type Result struct {
	Kind Kind
	Text string
}

var NoMatch = Result{}

func Value(s string) Result { return Result{Kind: KindValue, Text: s} }

// Fail is a recognised computation failure with a user-facing message.
func Fail(msg string) Result { return Result{Kind: KindError, Text: msg} }

func (r Result) Matched() bool { return r.Kind != KindNoMatch }

// String renders r the way callers display it: the value itself,
// "Error: <msg>" for failures and "" for no match.
func (r Result) String() string {
	switch r.Kind {
	case KindValue:
		return r.Text
	case KindError:
		return "Error: " + r.Text
	default:
		return ""
	}
}
