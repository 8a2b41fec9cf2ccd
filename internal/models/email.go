package models

// EmailKind identifies which template an email job renders.
type EmailKind string

const (
	EmailKindVerification  EmailKind = "verification"
	EmailKindPasswordReset EmailKind = "password_reset"
	EmailKindBroadcast     EmailKind = "broadcast"
)

// Recipient is one addressee of an email job.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EmailJob is a unit of outbound email work. It travels through the
// message queue as JSON, so it carries only data, never rendered HTML
// for single-recipient kinds.
type EmailJob struct {
	ID         string      `json:"id"`
	Kind       EmailKind   `json:"kind"`
	Recipients []Recipient `json:"recipients"`
	Subject    string      `json:"subject,omitempty"`
	Link       string      `json:"link,omitempty"`    // frontend URL carrying the raw single-use token
	Content    string      `json:"content,omitempty"` // broadcast message body
}
