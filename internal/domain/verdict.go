package domain

// Severity grades a verdict for presentation.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Verdict is the outcome of one rule engine evaluation: either a blocking
// explanation or a submit-enabled advisory. Exactly one verdict exists per
// evaluation; blocked is a normal outcome, never an error.
type Verdict struct {
	Allowed  bool
	Severity Severity
	Message  string

	// CopyableReference carries an existing ticket reference the operator
	// can hand back to the customer. Set only by blocking rules that cite
	// an open ticket.
	CopyableReference string
}

// Blocked constructs a blocking verdict.
func Blocked(severity Severity, message, copyable string) Verdict {
	return Verdict{Allowed: false, Severity: severity, Message: message, CopyableReference: copyable}
}

// Allow constructs a submit-enabled verdict.
func Allow(severity Severity, message string) Verdict {
	return Verdict{Allowed: true, Severity: severity, Message: message}
}
