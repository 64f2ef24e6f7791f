package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/otpgate/internal/auth/usecase.(*Usecase).Login(...)
	/src/otpgate/internal/auth/usecase/login.go:42 +0x1a
main.main()
	/src/otpgate/main.go:10 +0x25
`)

	// Act
	got := InternalPaths(stack)

	// Assert
	assert.Equal(t, []string{"internal/auth/usecase/login.go:42"}, got)
}

func TestInternalPaths_Empty(t *testing.T) {
	assert.Empty(t, InternalPaths(nil))
}
