// Package config reads typed settings from a file, environment variables and
// defaults. Durations are stored as integers and scaled by the getter name.
package config

import (
	"io"
	"time"
)

// Config defines typed accessors over configuration values.
//
// Missing keys and unconvertible values return the zero value of the type.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64

	// GetSecond reads an integer and returns it as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer and returns it as a number of minutes.
	GetMinute(key string) time.Duration

	// GetArray reads a list. Both YAML sequences and "a,b,c" strings are
	// accepted; elements are trimmed and empty ones dropped.
	GetArray(key string) []string

	// GetMap reads "k1:v1,k2:v2" into a map.
	GetMap(key string) map[string]string
}
