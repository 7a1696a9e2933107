package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	authFailedMessage    = "Invalid email or password, please try again!"
	signupFailedFallback = "Something went wrong. Please try again!"
)

// ErrAuthenticationFailed is returned for every failed login, whatever the
// server said.
var ErrAuthenticationFailed = errors.New(authFailedMessage)

// ValidationError lists the form fields that failed local validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return fmt.Sprintf("invalid input: %s", strings.Join(msgs, "; "))
}

// SignupError carries the message shown after a failed registration.
type SignupError struct {
	Message string
	Err     error
}

func (e *SignupError) Error() string { return e.Message }

func (e *SignupError) Unwrap() error { return e.Err }
