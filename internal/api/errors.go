package api

import "errors"

var (
	// ErrAuthFailure means a request was rejected for authorization reasons.
	// The interceptor has already cleared the session token by the time a
	// caller sees this; dependent UI reacts to the token change.
	ErrAuthFailure = errors.New("authorization rejected")

	// ErrCredentialRejected means a login or registration attempt failed.
	// It is surfaced to the user inline; the token state is untouched.
	ErrCredentialRejected = errors.New("invalid credentials")

	// ErrTransient means a request failed for network or server reasons.
	// Callers retry on their own cadence; nothing is surfaced to the user.
	ErrTransient = errors.New("transient request failure")
)
