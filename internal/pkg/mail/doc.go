// Package mail sends email messages through a configurable driver.
//
// Callers depend on the Mail interface and the Message payload. The "smtp"
// driver delivers over net/smtp; the "log" driver writes messages to the
// structured log, which is what local development uses to read codes.
package mail
