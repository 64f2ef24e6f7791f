// Package otp generates one-time numeric codes delivered out-of-band, for
// example by email, to prove control of an address.
package otp
