package audit

import "time"

// Event is emitted from domain logic to capture key credential actions. Keep
// it transport-agnostic so stores and sinks can fan out. Subject is the
// patient the credential covers; Operator is whoever invoked it.
type Event struct {
	Timestamp    time.Time
	CredentialID string
	Variant      string
	Subject      string
	Operator     string
	Action       Action
	Permissions  []string
	Verdict      string
	Reason       string
	Client       string
	RequestID    string
}

// Action enumerates the audited credential operations.
type Action string

const (
	ActionCredentialIssued   Action = "credential_issued"
	ActionIssueRejected      Action = "credential_issue_rejected"
	ActionCredentialDecoded  Action = "credential_decoded"
	ActionDecodeFailed       Action = "credential_decode_failed"
	ActionPresentationOK     Action = "presentation_authorized"
	ActionPresentationDenied Action = "presentation_denied"
	ActionInspected          Action = "credential_inspected"
)
