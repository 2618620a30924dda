package identity

import (
	"errors"
	"fmt"
)

// Code identifies an identity failure. Values follow the provider's wire codes
// so stored client state and logs stay comparable.
type Code string

const (
	CodeUserNotFound  Code = "auth/user-not-found"
	CodeEmailInUse    Code = "auth/email-already-in-use"
	CodeInvalidEmail  Code = "auth/invalid-email"
	CodeWeakPassword  Code = "auth/weak-password"
	CodeNetwork       Code = "auth/network-request-failed"
	CodeWrongPassword Code = "auth/wrong-password"
)

type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, err error) *Error { return &Error{Code: code, Err: err} }

// CodeOf returns the code carried by err, or "" when err is not an identity error.
func CodeOf(err error) Code {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

const GenericMessage = "Authentication failed"

var messages = map[Code]string{
	CodeUserNotFound: "User not found. Please register to create an account.",
	CodeEmailInUse:   "This email is already registered. Please sign in instead.",
	CodeInvalidEmail: "Please enter a valid email address.",
	CodeWeakPassword: "Password is too weak. Please use a stronger password.",
	CodeNetwork:      "Network error. Please check your internet connection.",
}

// Message maps an identity error to the text shown to the user.
func Message(err error) string {
	if m, ok := messages[CodeOf(err)]; ok {
		return m
	}
	return GenericMessage
}
