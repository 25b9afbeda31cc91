// Package oauthstate signs and verifies the state parameter of the consent flow.
package oauthstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// MaxAge is how long a consent flow may take before its state is rejected.
const MaxAge = 45 * time.Minute

var (
	ErrStateInvalid = errors.New("invalid state parameter")
	ErrStateExpired = errors.New("state expired")
)

// State is the payload bound to one consent flow.
type State struct {
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
	SessionID string `json:"session_id"`
	DemoMode  bool   `json:"demo_mode"`
}

// Valid satisfies jwt.Claims. Age is checked by Verify against MaxAge.
func (s State) Valid() error { return nil }

// IssuedAt returns the creation time of the state.
func (s State) IssuedAt() time.Time { return time.UnixMilli(s.Timestamp) }

// Signer issues and verifies HMAC signed states.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// Issue creates a signed state for the user. An empty sessionID gets a fresh one.
func (s *Signer) Issue(userID, sessionID string, demo bool) (string, State, error) {
	if len(s.secret) == 0 {
		return "", State{}, errors.New("state secret not configured")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	st := State{
		UserID:    userID,
		Timestamp: s.now().UnixMilli(),
		Nonce:     uuid.NewString(),
		SessionID: sessionID,
		DemoMode:  demo,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, st).SignedString(s.secret)
	if err != nil {
		return "", State{}, fmt.Errorf("sign state: %w", err)
	}
	return signed, st, nil
}

// Verify checks the signature and the required fields. When the signature holds
// but the state is too old, the decoded state is returned with ErrStateExpired.
func (s *Signer) Verify(raw string) (State, error) {
	var st State
	token, err := jwt.ParseWithClaims(raw, &st, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return State{}, ErrStateInvalid
	}
	if st.UserID == "" || st.Nonce == "" || st.SessionID == "" || st.Timestamp == 0 {
		return State{}, ErrStateInvalid
	}
	if s.now().Sub(st.IssuedAt()) > MaxAge {
		return st, ErrStateExpired
	}
	return st, nil
}
