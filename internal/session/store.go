// Package session owns the bearer credential lifecycle of a console user.
//
// A Store keeps at most one token. Reads never fail: absence is reported as
// ("", false). No component other than a Store touches the underlying key.
package session

const (
	// TokenKey is the fixed storage key holding the bearer token.
	TokenKey = "quantix_token"
	// UserKey holds the logged-in user's JSON. It is a convenience cache for
	// defaulting UI selections and is never authoritative.
	UserKey = "currentUser"
)

// Store persists the bearer credential.
type Store interface {
	// Token returns the current credential. An empty token is reported absent.
	Token() (string, bool)
	// SetToken persists the credential, overwriting any prior value.
	SetToken(token string)
	// ClearToken removes the credential. Clearing an empty store is a no-op.
	ClearToken()
	// CurrentUser returns the cached user JSON.
	CurrentUser() ([]byte, bool)
	// SetCurrentUser caches the user JSON.
	SetCurrentUser(raw []byte)
	// ClearCurrentUser drops the cached user JSON.
	ClearCurrentUser()
}

// Clear removes every credential-related key from s.
func Clear(s Store) {
	if s == nil {
		return
	}
	s.ClearToken()
	s.ClearCurrentUser()
}
