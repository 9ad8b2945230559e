// Package prompt assembles the bounded context handed to the model: system
// section, action instruction block, fresh collaborator facts, recent
// history, and the current utterance.
package prompt

// Attachment is an optional binary input (recorded audio) forwarded to the
// model alongside the prompt.
type Attachment struct {
	MimeType string
	Data     []byte
}

// Bundle is the fully assembled prompt for one model call. The system text
// already carries the instruction block, facts, and rendered history; engines
// only add the user utterance and optional attachment.
type Bundle struct {
	System     string
	User       string
	Attachment *Attachment
}
