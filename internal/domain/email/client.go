package email

import "context"

// Message is the rendered notification payload handed to the delivery
// provider. It is derived per invocation and never persisted.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Client defines an interface for sending email via an external provider.
// This helps in decoupling the dispatch logic from the specific provider SDK.
type Client interface {
	// Send delivers the message and returns the provider-assigned receipt id.
	Send(ctx context.Context, msg Message) (string, error)
}
