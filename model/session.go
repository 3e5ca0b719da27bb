// file: model/session.go

package model

import "time"

// RefreshSession is the server-side record of an issued refresh token.
// TokenID equals the refresh token's jti; only a one-way hash of the token
// itself is stored.
type RefreshSession struct {
	TokenID           string    `json:"token_id"`
	OwnerID           string    `json:"owner_id"`
	TokenHash         string    `json:"-"` // The hash is not exposed in JSON responses.
	ClientIP          string    `json:"client_ip"`
	DeviceFingerprint string    `json:"device_fingerprint,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// MatchesOrigin reports whether a request from clientIP/device may use the
// session.
func (s *RefreshSession) MatchesOrigin(clientIP, device string) bool {
	return s.ClientIP == clientIP && s.DeviceFingerprint == device
}
