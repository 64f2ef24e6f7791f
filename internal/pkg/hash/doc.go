// Package hash provides helpers for hashing and verifying secrets.
//
// Passwords are stored with bcrypt or Argon2id, selected at startup. One-time
// codes are short-lived and low-entropy, so they are stored as keyed
// HMAC-SHA256 digests and compared in constant time.
package hash
