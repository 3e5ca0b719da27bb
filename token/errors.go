package token

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid is returned for malformed tokens and bad signatures.
	ErrInvalid = errors.New("token invalid")

	// ErrExpired is returned when expiry verification is on and exp has passed.
	ErrExpired = errors.New("token expired")

	// ErrWrongKind is returned when a genuine token is presented as another kind.
	ErrWrongKind = errors.New("token type invalid")

	// ErrMissingClaim is returned when a required claim is absent.
	ErrMissingClaim = errors.New("token missing required claim")

	// ErrUnknownKind is returned when asked to issue or verify an unrecognized kind.
	ErrUnknownKind = errors.New("unknown token kind")
)

// WrongKindError carries the kind found in the token and the kind expected.
type WrongKindError struct {
	Got  Kind
	Want Kind
}

func (e *WrongKindError) Error() string {
	return fmt.Sprintf("%s: got %q, want %q", ErrWrongKind.Error(), e.Got, e.Want)
}

func (e *WrongKindError) Unwrap() error { return ErrWrongKind }

// MissingClaimError names the absent claim.
type MissingClaimError struct {
	Claim string
}

func (e *MissingClaimError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingClaim.Error(), e.Claim)
}

func (e *MissingClaimError) Unwrap() error { return ErrMissingClaim }
