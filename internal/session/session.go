// Package session tracks who is signed in.
//
// The server is the authority on identity; tokens are decoded without
// verifying their signature only to learn the user id and expiry early.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/five82/heart/internal/bindable"
	"github.com/five82/heart/internal/online"
)

var (
	// ErrNoToken indicates an empty access token.
	ErrNoToken = errors.New("no access token")
	// ErrTokenExpired indicates the token's exp claim is in the past.
	ErrTokenExpired = errors.New("access token expired")
	// ErrInvalidToken indicates the token could not be decoded.
	ErrInvalidToken = errors.New("invalid access token")
)

// User is the signed-in identity. The zero value is a guest.
type User struct {
	ID       int64
	Username string
}

// Guest is the unauthenticated user.
var Guest = User{Username: "Guest"}

// IsGuest reports whether u is unauthenticated.
func (u User) IsGuest() bool {
	return u.ID <= 0
}

// String returns a display label.
func (u User) String() string {
	if u.IsGuest() {
		return "Guest"
	}
	if u.Username != "" {
		return u.Username
	}
	return "user #" + strconv.FormatInt(u.ID, 10)
}

// Claims is the subset of token claims the client reads.
type Claims struct {
	UserID    int64
	ExpiresAt time.Time
	Scopes    []string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
}

// ParseToken decodes an access token without verifying its signature.
func ParseToken(token string, now time.Time) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrNoToken
	}
	var raw tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &raw); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw.Subject), 10, 64)
	if err != nil || id <= 0 {
		return Claims{}, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, raw.Subject)
	}
	claims := Claims{UserID: id, Scopes: raw.Scopes}
	if raw.ExpiresAt != nil {
		claims.ExpiresAt = raw.ExpiresAt.Time
		if !claims.ExpiresAt.After(now) {
			return claims, ErrTokenExpired
		}
	}
	return claims, nil
}

// Provider owns the current user and replays it to subscribers.
// Like the bindable it wraps, it belongs to a single execution context.
type Provider struct {
	LocalUser *bindable.Bindable[User]

	token   string
	now     func() time.Time
	onToken func(token string)
}

// Option customises a Provider.
type Option func(*Provider)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithTokenSink receives the token whenever it changes, e.g. to configure an
// HTTP client.
func WithTokenSink(fn func(token string)) Option {
	return func(p *Provider) { p.onToken = fn }
}

// NewProvider returns a provider with a guest user.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		LocalUser: bindable.New(Guest),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// User returns the current user.
func (p *Provider) User() User {
	return p.LocalUser.Value()
}

// Token returns the current access token, empty for guests.
func (p *Provider) Token() string {
	return p.token
}

// SignIn adopts token. Invalid or expired tokens leave the provider signed out.
func (p *Provider) SignIn(token string) (User, error) {
	claims, err := ParseToken(token, p.now())
	if err != nil {
		p.SignOut()
		return Guest, err
	}
	p.setToken(strings.TrimSpace(token))
	user := User{ID: claims.UserID}
	if current := p.LocalUser.Value(); current.ID == user.ID {
		user.Username = current.Username
	}
	p.LocalUser.Set(user)
	return user, nil
}

// SignOut forgets the token and switches to the guest user.
func (p *Provider) SignOut() {
	p.setToken("")
	p.LocalUser.Set(Guest)
}

// Apply folds the result of a /me lookup into the session. A 401 signs out;
// other errors keep the current user.
func (p *Provider) Apply(me *online.APIUser, err error) {
	switch {
	case errors.Is(err, online.ErrUnauthorized):
		p.SignOut()
	case err != nil:
		return
	case me == nil || me.ID <= 0:
		return
	case p.token == "":
		// Signed out while the lookup was in flight.
		return
	default:
		p.LocalUser.Set(User{ID: me.ID, Username: me.Username})
	}
}

func (p *Provider) setToken(token string) {
	if p.token == token {
		return
	}
	p.token = token
	if p.onToken != nil {
		p.onToken(token)
	}
}
