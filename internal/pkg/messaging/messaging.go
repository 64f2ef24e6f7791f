package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("messaging: publisher is closed")

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	io.Closer

	// Publish sends a message to the destination and waits for the broker
	// to accept it.
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage represents a broker-agnostic message to be published.
type OutgoingMessage struct {
	Body []byte

	// Key selects the Kafka partition; messages with the same key stay ordered.
	Key []byte

	// Headers are dropped by brokers without header support (NSQ).
	Headers []Header
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// HeaderValue returns the first header named key.
func (m OutgoingMessage) HeaderValue(key string) (string, bool) {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	Topic     string
	Timestamp time.Time
}
