// Package messaging publishes domain events to a message broker.
//
// Business code depends on Publisher only; the driver (NATS, NSQ, Kafka or
// none) is chosen from configuration at startup.
package messaging
