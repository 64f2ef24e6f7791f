// Package event defines the wire payloads and destinations of domain events.
// Consumers outside this service decode these shapes, so fields only grow.
package event
