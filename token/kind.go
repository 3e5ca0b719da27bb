package token

// Kind identifies the purpose a token was issued for.
type Kind string

const (
	KindAccess  Kind = "access_token"
	KindRefresh Kind = "refresh_token"
	KindEmail   Kind = "email_token"
)

// Kinds lists every recognized token kind.
var Kinds = []Kind{KindAccess, KindRefresh, KindEmail}

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	switch k {
	case KindAccess, KindRefresh, KindEmail:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }
