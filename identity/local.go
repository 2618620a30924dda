// Package identity is the sign-in/sign-up collaborator. Local issues its own
// JWT sessions over an AccountStore and streams per-token session state.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sahayakseva/backend/models"
	"sahayakseva/backend/session"
	"sahayakseva/backend/utils"
)

const minPasswordLen = 6

type Session struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
}

// Provider is what the HTTP layer needs from an identity backend.
type Provider interface {
	session.Source
	SignIn(ctx context.Context, email, password string) (*Session, error)
	CreateAccount(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Identify(token string) (string, error)
}

type watch struct {
	obs  *session.Observer
	refs int
}

type Local struct {
	accounts AccountStore
	secret   string
	ttl      time.Duration
	log      *zap.Logger
	validate *validator.Validate

	mu       sync.Mutex
	ready    bool
	revoked  map[string]time.Time // token id -> expiry
	watchers map[string]*watch    // raw token -> observer
}

func NewLocal(accounts AccountStore, secret string, ttl time.Duration, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{
		accounts: accounts,
		secret:   secret,
		ttl:      ttl,
		log:      log,
		validate: validator.New(),
		revoked:  map[string]time.Time{},
		watchers: map[string]*watch{},
	}
}

// Start blocks until the account store answers, then resolves every pending
// observer. Until then sessions read as pending.
func (p *Local) Start(ctx context.Context) error {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		err := p.accounts.Ping(ctx)
		if err == nil {
			break
		}
		p.log.Warn("identity store not ready", zap.Error(err))
		select {
		case <-ctx.Done():
			return newError(CodeNetwork, ctx.Err())
		case <-t.C:
		}
	}

	p.mu.Lock()
	p.ready = true
	type pending struct {
		obs *session.Observer
		st  session.State
	}
	resolved := make([]pending, 0, len(p.watchers))
	for token, w := range p.watchers {
		resolved = append(resolved, pending{w.obs, p.resolveLocked(token)})
	}
	p.mu.Unlock()

	for _, r := range resolved {
		r.obs.Publish(r.st)
	}
	p.log.Info("identity provider ready")
	return nil
}

func (p *Local) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Local) resolveLocked(token string) session.State {
	if token == "" {
		return session.SignedOut
	}
	claims, err := utils.ParseJWT(p.secret, token)
	if err != nil {
		return session.SignedOut
	}
	if _, gone := p.revoked[claims.ID]; gone {
		return session.SignedOut
	}
	return session.SignedIn
}

// ObserveSessionState calls fn with Pending until the provider is ready, then
// with the token's state, and again whenever the token is signed out.
func (p *Local) ObserveSessionState(token string, fn func(session.State)) func() {
	p.mu.Lock()
	w := p.watchers[token]
	if w == nil {
		w = &watch{obs: session.NewObserver()}
		p.watchers[token] = w
		if p.ready {
			w.obs.Publish(p.resolveLocked(token))
		}
	}
	w.refs++
	p.mu.Unlock()

	unsub := w.obs.Subscribe(fn)
	var once sync.Once
	return func() {
		once.Do(func() {
			unsub()
			p.mu.Lock()
			w.refs--
			if w.refs == 0 {
				if p.watchers[token] == w {
					delete(p.watchers, token)
				}
				w.obs.Close()
			}
			p.mu.Unlock()
		})
	}
}

func (p *Local) Identify(token string) (string, error) {
	claims, err := utils.ParseJWT(p.secret, token)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	_, gone := p.revoked[claims.ID]
	p.mu.Unlock()
	if gone {
		return "", errors.New("session signed out")
	}
	return claims.AccountID, nil
}

func (p *Local) checkEmail(email string) error {
	if err := p.validate.Var(strings.TrimSpace(email), "required,email"); err != nil {
		return newError(CodeInvalidEmail, err)
	}
	return nil
}

func (p *Local) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if !p.Ready() {
		return nil, newError(CodeNetwork, errors.New("identity provider not ready"))
	}
	if err := p.checkEmail(email); err != nil {
		return nil, err
	}
	acct, err := p.accounts.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, newError(CodeUserNotFound, err)
	}
	if err != nil {
		return nil, newError(CodeNetwork, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, newError(CodeWrongPassword, err)
	}
	return p.issue(acct.ID)
}

func (p *Local) CreateAccount(ctx context.Context, email, password string) (*Session, error) {
	if !p.Ready() {
		return nil, newError(CodeNetwork, errors.New("identity provider not ready"))
	}
	if err := p.checkEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, newError(CodeWeakPassword, fmt.Errorf("password shorter than %d characters", minPasswordLen))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, newError(CodeWeakPassword, err)
	}
	acct := &models.Account{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, newError(CodeEmailInUse, err)
		}
		return nil, newError(CodeNetwork, err)
	}
	p.log.Info("account created", zap.String("account_id", acct.ID))
	return p.issue(acct.ID)
}

func (p *Local) issue(accountID string) (*Session, error) {
	token, claims, err := utils.GenerateJWT(p.secret, accountID, p.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &Session{Token: token, AccountID: accountID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// SignOut revokes the token and tells its observers. Unknown or invalid tokens
// are already signed out, so this is a no-op for them.
func (p *Local) SignOut(_ context.Context, token string) error {
	claims, err := utils.ParseJWT(p.secret, token)
	if err != nil {
		return nil
	}
	now := time.Now()
	p.mu.Lock()
	for id, exp := range p.revoked {
		if exp.Before(now) {
			delete(p.revoked, id)
		}
	}
	p.revoked[claims.ID] = claims.ExpiresAt.Time
	var obs *session.Observer
	if w := p.watchers[token]; w != nil {
		obs = w.obs
	}
	p.mu.Unlock()

	if obs != nil {
		obs.Publish(session.SignedOut)
	}
	return nil
}
