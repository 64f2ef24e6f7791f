// Package cli is the interactive terminal front-end of otpgate-client.
//
// Commands are read line by line. Codes may be typed or pasted; anything
// that is not a digit is ignored.
//
//	Signed out: help, register, login, exit
//	Signed in:  help, whoami, profile, logout, exit
package cli
