package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTokenTTL = 15 * time.Minute

	maxMintAttempts = 8
)

var errTokenSpace = errors.New("could not mint a unique token")

// Session is the token row bound to one username. At most one exists per
// username; it is refreshed by login and never deleted.
type Session struct {
	Username    string
	Token       string
	LastUpdated time.Time
}

type Option func(*Issuer)

func WithTTL(d time.Duration) Option {
	return func(is *Issuer) {
		if d > 0 {
			is.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(is *Issuer) { is.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(is *Issuer) { is.log = log }
}

func WithMetrics(m *Metrics) Option {
	return func(is *Issuer) { is.metrics = m }
}

func WithTokenSource(next func() (string, error)) Option {
	return func(is *Issuer) { is.newToken = next }
}

// Issuer logs users in and validates their access tokens. Login runs under a
// single mutex so the lock check, credential check and counter update are
// one step, and the one-token-per-username rule holds.
type Issuer struct {
	users    CredentialStore
	throttle *Throttler

	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
	log      *zap.Logger
	metrics  *Metrics

	mu      sync.Mutex
	byUser  map[string]*Session
	byToken map[string]*Session
}

func NewIssuer(users CredentialStore, throttle *Throttler, opts ...Option) *Issuer {
	is := &Issuer{
		users:    users,
		throttle: throttle,
		ttl:      DefaultTokenTTL,
		now:      time.Now,
		newToken: NewToken,
		log:      zap.NewNop(),
		byUser:   make(map[string]*Session),
		byToken:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(is)
	}
	return is
}

func (is *Issuer) TTL() time.Duration { return is.ttl }

// Login returns the username's access token, minting one on first success
// and refreshing the existing one (expired or not) afterwards.
func (is *Issuer) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		is.metrics.loginResult(resultMissing)
		return "", ErrMissingCredentials
	}

	is.mu.Lock()
	defer is.mu.Unlock()

	if is.throttle.Locked(username) {
		is.metrics.loginResult(resultLocked)
		is.log.Warn("login rejected: account locked", zap.String("username", username))
		return "", ErrAccountLocked
	}

	cred, err := is.users.Verify(ctx, username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		n := is.throttle.RecordFailure(username)
		is.metrics.loginResult(resultInvalid)
		if n == is.throttle.Limit() {
			is.metrics.lockout()
			is.log.Warn("account locked after failed logins",
				zap.String("username", username),
				zap.Int("failures", n),
			)
		}
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("verify credentials: %w", err)
	}

	is.throttle.RecordSuccess(username)
	is.metrics.loginResult(resultOK)

	now := is.now()
	if s, ok := is.byUser[cred.Username]; ok {
		s.LastUpdated = now
		return s.Token, nil
	}

	tok, err := is.mintLocked()
	if err != nil {
		return "", err
	}

	s := &Session{Username: cred.Username, Token: tok, LastUpdated: now}
	is.byUser[s.Username] = s
	is.byToken[s.Token] = s

	is.log.Info("access token issued", zap.String("username", s.Username))
	return tok, nil
}

// Resolve returns the session for token if it was refreshed less than the
// TTL ago and its username is still known to the credential store. Expired,
// unknown and orphaned tokens are all ErrUnauthorized. Resolving does not
// refresh the session.
func (is *Issuer) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}

	is.mu.Lock()
	s, ok := is.byToken[token]
	var sess Session
	if ok {
		sess = *s
	}
	is.mu.Unlock()

	if !ok || is.now().Sub(sess.LastUpdated) >= is.ttl {
		return Session{}, ErrUnauthorized
	}

	_, found, err := is.users.Lookup(ctx, sess.Username)
	if err != nil {
		return Session{}, fmt.Errorf("lookup %q: %w", sess.Username, err)
	}
	if !found {
		is.log.Warn("token for unknown user rejected", zap.String("username", sess.Username))
		return Session{}, ErrUnauthorized
	}
	return sess, nil
}

func (is *Issuer) mintLocked() (string, error) {
	for i := 0; i < maxMintAttempts; i++ {
		tok, err := is.newToken()
		if err != nil {
			return "", fmt.Errorf("mint token: %w", err)
		}
		if _, taken := is.byToken[tok]; !taken {
			return tok, nil
		}
	}
	return "", errTokenSpace
}
