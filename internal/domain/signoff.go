package domain

// SignOff is the structured field-force restoration report. When only a
// free-text message is available the fields are recovered by labeled-line
// scanning, with missing labels defaulting to "N/A".
type SignOff struct {
	DateRestored string
	TroubleFound string
	Cause        string
	ActionTaken  string
}
