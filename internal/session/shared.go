package session

import (
	"context"

	"github.com/quantix/quantix-console/internal/shared"
)

// Browser adapts the Redis-backed cookie session to a Store. Writes are
// persisted when the session middleware commits the response.
type Browser struct {
	sess *shared.Session
}

var _ Store = (*Browser)(nil)

// FromShared wraps sess. A nil session yields a store that is always empty.
func FromShared(sess *shared.Session) *Browser {
	return &Browser{sess: sess}
}

func (b *Browser) Token() (string, bool) {
	if b == nil || b.sess == nil {
		return "", false
	}
	token, ok := b.sess.Lookup(TokenKey)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (b *Browser) SetToken(token string) {
	if b == nil || b.sess == nil {
		return
	}
	b.sess.Set(TokenKey, token)
}

func (b *Browser) ClearToken() {
	if b == nil || b.sess == nil {
		return
	}
	b.sess.Delete(TokenKey)
}

func (b *Browser) CurrentUser() ([]byte, bool) {
	if b == nil || b.sess == nil {
		return nil, false
	}
	raw, ok := b.sess.Lookup(UserKey)
	if !ok || raw == "" {
		return nil, false
	}
	return []byte(raw), true
}

func (b *Browser) SetCurrentUser(raw []byte) {
	if b == nil || b.sess == nil {
		return
	}
	b.sess.Set(UserKey, string(raw))
}

func (b *Browser) ClearCurrentUser() {
	if b == nil || b.sess == nil {
		return
	}
	b.sess.Delete(UserKey)
}

// FromContext returns the Store of the browser session carried by ctx.
func FromContext(ctx context.Context) *Browser {
	return FromShared(shared.SessionFromContext(ctx))
}
