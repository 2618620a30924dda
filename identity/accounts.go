package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sahayakseva/backend/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateEmail  = errors.New("email already registered")
)

// AccountStore persists identity records.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Ping(ctx context.Context) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type MemoryAccounts struct {
	mu      sync.RWMutex
	byEmail map[string]models.Account
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{byEmail: map[string]models.Account{}}
}

func (m *MemoryAccounts) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(a.Email)
	if _, ok := m.byEmail[key]; ok {
		return ErrDuplicateEmail
	}
	m.byEmail[key] = *a
	return nil
}

func (m *MemoryAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (m *MemoryAccounts) Ping(context.Context) error { return nil }

type PostgresAccounts struct {
	pool *pgxpool.Pool
}

func NewPostgresAccounts(pool *pgxpool.Pool) *PostgresAccounts {
	return &PostgresAccounts{pool: pool}
}

func (p *PostgresAccounts) Create(ctx context.Context, a *models.Account) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO accounts(id,email,password_hash,created_at) VALUES($1,$2,$3,$4)`,
		a.ID, normalizeEmail(a.Email), a.PasswordHash, a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

func (p *PostgresAccounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := p.pool.QueryRow(ctx, `SELECT id::text, email, password_hash, created_at FROM accounts WHERE email=$1`,
		normalizeEmail(email)).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *PostgresAccounts) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}
