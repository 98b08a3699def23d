package domain

// Email is a structured outbound message. Immutable once dispatched; the
// message log is append-only.
type Email struct {
	ID        string
	From      string
	To        string
	Subject   string
	Body      string
	Timestamp string
}

// Draft is an email before the dispatcher assigns id and timestamp.
type Draft struct {
	From    string
	To      string
	Subject string
	Body    string
}
