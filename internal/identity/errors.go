package identity

import (
	"fmt"
	"strings"
)

// ErrorKind is the user-facing taxonomy of identity failures.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindInvalidEmail
	KindInvalidCredentials
	KindEmailInUse
	KindWeakPassword
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidEmail:
		return "invalid-email"
	case KindInvalidCredentials:
		return "invalid-credentials"
	case KindEmailInUse:
		return "email-in-use"
	case KindWeakPassword:
		return "weak-password"
	default:
		return "other"
	}
}

// AuthError is a failed sign-in or sign-up. Code is the provider's raw code.
type AuthError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("identity: %s", e.Code)
}

// UserMessage renders the error for the sign-in screen.
func (e *AuthError) UserMessage() string {
	switch e.Kind {
	case KindInvalidEmail:
		return "Invalid email address format."
	case KindInvalidCredentials:
		return "Invalid email or password."
	case KindEmailInUse:
		return "This email is already registered. Try logging in."
	case KindWeakPassword:
		return "Password should be at least 6 characters."
	case KindOther:
		detail := e.Message
		if detail == "" {
			detail = e.Code
		}
		return fmt.Sprintf("Authentication failed: %s", detail)
	default:
		return "Authentication failed."
	}
}

// KindForCode maps REST error codes ("EMAIL_EXISTS", "WEAK_PASSWORD : ...")
// and SDK codes ("auth/email-already-in-use") onto an ErrorKind.
func KindForCode(code string) ErrorKind {
	normalized := strings.TrimSpace(code)
	if idx := strings.Index(normalized, ":"); idx > 0 && !strings.HasPrefix(normalized, "auth/") {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	switch strings.ToUpper(normalized) {
	case "INVALID_EMAIL", "AUTH/INVALID-EMAIL", "MISSING_EMAIL":
		return KindInvalidEmail
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "MISSING_PASSWORD",
		"AUTH/USER-NOT-FOUND", "AUTH/WRONG-PASSWORD", "AUTH/INVALID-CREDENTIAL":
		return KindInvalidCredentials
	case "EMAIL_EXISTS", "AUTH/EMAIL-ALREADY-IN-USE":
		return KindEmailInUse
	case "WEAK_PASSWORD", "AUTH/WEAK-PASSWORD":
		return KindWeakPassword
	default:
		return KindOther
	}
}

// NewAuthError builds an AuthError from a provider code. Text after " : " in
// REST codes becomes the message.
func NewAuthError(code string) *AuthError {
	raw := strings.TrimSpace(code)
	head, message := raw, ""
	if idx := strings.Index(raw, " : "); idx > 0 {
		head, message = strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+3:])
	}
	return &AuthError{Kind: KindForCode(head), Code: head, Message: message}
}
