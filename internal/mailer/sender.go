// Package mailer delivers transactional and broadcast email and renders their bodies.
package mailer

import (
	"context"
	"time"
)

// Message is one email handed to the provider.
type Message struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
}

// Result is the provider's acknowledgement of one message.
type Result struct {
	MessageID string
	SentAt    time.Time
}

// MaxBatch is the largest batch the provider accepts in one call.
const MaxBatch = 100

// Sender is the provider-facing delivery capability.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
	// SendBatch delivers at most MaxBatch messages in one call; it either accepts all of them or fails.
	SendBatch(ctx context.Context, msgs []Message) ([]Result, error)
}
