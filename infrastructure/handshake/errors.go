package handshake

import "fmt"

// Kind classifies why a handshake did not succeed.
type Kind string

const (
	KindPopupBlocked Kind = "popup_blocked"
	KindTimeout      Kind = "timeout"
	KindCancelled    Kind = "cancelled"
	KindProvider     Kind = "provider"
)

// Error is a classified handshake failure. errors.Is matches on Kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrPopupBlocked = &Error{Kind: KindPopupBlocked}
	ErrTimeout      = &Error{Kind: KindTimeout}
	ErrCancelled    = &Error{Kind: KindCancelled}
	ErrProvider     = &Error{Kind: KindProvider}
)

const (
	msgCancelled    = "Authentication cancelled by user"
	msgTimeout      = "Authentication timeout - please try again"
	msgPopupBlocked = "Failed to open popup window. Please allow popups for this site and try again."
)
