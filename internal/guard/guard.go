// Package guard gates protected screens on the presence of a bearer token
// and turns backend authorization failures into a single logout.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/session"
)

// State is the authentication state of a browser session.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Guard redirects unauthenticated requests to the login surface.
type Guard struct {
	loginPath string
	logger    *slog.Logger
	now       func() time.Time
	parser    *jwt.Parser

	onForcedLogout func()
}

// New returns a Guard redirecting to loginPath.
func New(loginPath string, logger *slog.Logger) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		loginPath: loginPath,
		logger:    logger,
		now:       time.Now,
		parser:    jwt.NewParser(),
	}
}

// LoginPath is where unauthenticated requests land.
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// StateOf reports the state of store. A token that parses as a JWT whose exp
// lies in the past counts as absent; opaque tokens are trusted until the
// backend rejects them.
func (g *Guard) StateOf(store session.Store) State {
	if store == nil {
		return Unauthenticated
	}
	token, ok := store.Token()
	if !ok {
		return Unauthenticated
	}
	if g.expired(token) {
		return Unauthenticated
	}
	return Authenticated
}

func (g *Guard) expired(token string) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := g.parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(g.now())
}

// RequireAuth must wrap every protected route. It runs before the handler
// so no data fetch is attempted for an unauthenticated session.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := session.FromContext(r.Context())
		if g.StateOf(store) != Authenticated {
			if _, ok := store.Token(); ok {
				// expired JWT
				session.Clear(store)
			}
			g.redirectToLogin(w, r, r.URL.RequestURI())
			return
		}
		latch := &Latch{store: store}
		next.ServeHTTP(w, r.WithContext(WithLatch(r.Context(), latch)))
	})
}

// Logout clears the session and sends the browser to the login surface.
func (g *Guard) Logout(w http.ResponseWriter, r *http.Request) {
	session.Clear(session.FromContext(r.Context()))
	g.redirectToLogin(w, r, "")
}

// Handle reacts to a service error. For Unauthorized it clears the session,
// redirects to login and returns true; the redirect is written at most once
// per request no matter how many calls failed. Any error also counts once a
// sibling call of the same request has tripped the latch. Other errors
// return false.
func (g *Guard) Handle(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	latch := LatchFrom(r.Context())
	if !errors.Is(err, apiclient.ErrUnauthorized) && !latch.Tripped() {
		return false
	}
	if latch == nil {
		session.Clear(session.FromContext(r.Context()))
		g.redirectToLogin(w, r, "")
		return true
	}
	latch.Trip()
	if latch.redirected.CompareAndSwap(false, true) {
		g.logger.Info("session rejected by backend, logging out", slog.String("path", r.URL.Path))
		if g.onForcedLogout != nil {
			g.onForcedLogout()
		}
		g.redirectToLogin(w, r, "")
	}
	return true
}

func (g *Guard) redirectToLogin(w http.ResponseWriter, r *http.Request, next string) {
	target := g.loginPath
	if next != "" && next != "/" && SafeNext(next) {
		target += "?next=" + url.QueryEscape(next)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// OnForcedLogout registers fn to run once per request whose session was
// terminated by an unauthorized response.
func (g *Guard) OnForcedLogout(fn func()) {
	g.onForcedLogout = fn
}

// SafeNext reports whether next is a local path usable as a post-login target.
func SafeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, `\`)
}

// Latch makes session termination idempotent within one request.
type Latch struct {
	store      session.Store
	once       sync.Once
	tripped    atomic.Bool
	redirected atomic.Bool
}

// Trip clears the session the first time it is called.
func (l *Latch) Trip() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		session.Clear(l.store)
		l.tripped.Store(true)
	})
}

// Tripped reports whether the session has been terminated.
func (l *Latch) Tripped() bool {
	return l != nil && l.tripped.Load()
}

type latchKey struct{}

// WithLatch stores latch in ctx.
func WithLatch(ctx context.Context, latch *Latch) context.Context {
	return context.WithValue(ctx, latchKey{}, latch)
}

// LatchFrom extracts the request latch, if any.
func LatchFrom(ctx context.Context) *Latch {
	latch, _ := ctx.Value(latchKey{}).(*Latch)
	return latch
}

// Expire is an apiclient unauthorized hook: it trips the latch of the
// request that issued the call.
func Expire(ctx context.Context) {
	LatchFrom(ctx).Trip()
}
