package dto

// EmailResponse is the public view of a dispatched message.
type EmailResponse struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// FieldSignOffRequest payload. An empty date_restored defaults to now.
type FieldSignOffRequest struct {
	DateRestored string `json:"date_restored"`
	TroubleFound string `json:"trouble_found"`
	Cause        string `json:"cause"`
	ActionTaken  string `json:"action_taken"`
}

// ChatRequest payload for the advisory console.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse carries the advisory reply text.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ReportResponse is a generated analysis artifact.
type ReportResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// DatasetLoadResponse reports how many rows replaced a reference table.
type DatasetLoadResponse struct {
	Table   string `json:"table"`
	Records int    `json:"records"`
}
