// file: model/revocation.go

package model

import (
	"fmt"
	"time"
)

// RevocationReason records why a token id was blacklisted.
type RevocationReason string

const (
	ReasonLogout             RevocationReason = "logout"
	ReasonPasswordChanged    RevocationReason = "password_changed"
	ReasonTokenRotation      RevocationReason = "token_rotation"
	ReasonAccountDeactivated RevocationReason = "account_deactivated"
	ReasonAccountSuspended   RevocationReason = "account_suspended"
	ReasonAdminRevoked       RevocationReason = "admin_revoked"
	ReasonCompromised        RevocationReason = "compromised_token"
)

// Valid reports whether r is one of the known reasons.
func (r RevocationReason) Valid() bool {
	switch r {
	case ReasonLogout, ReasonPasswordChanged, ReasonTokenRotation, ReasonAccountDeactivated,
		ReasonAccountSuspended, ReasonAdminRevoked, ReasonCompromised:
		return true
	}
	return false
}

// Scan implements sql.Scanner so the nullable enum column reads into a
// RevocationReason; NULL becomes the empty reason.
func (r *RevocationReason) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = ""
	case string:
		*r = RevocationReason(v)
	case []byte:
		*r = RevocationReason(v)
	default:
		return fmt.Errorf("model: cannot scan %T into RevocationReason", src)
	}
	return nil
}

// RevokedToken is a blacklist entry. Entries are written once and never
// updated.
type RevokedToken struct {
	TokenID   string           `json:"token_id"`
	Reason    RevocationReason `json:"reason"`
	RevokedAt time.Time        `json:"revoked_at"`
}
