package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/clock"
	"github.com/nightmarket/aestore/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const CookieName = "aestore_session"

var (
	ErrNoSession      = errors.New("no_session")
	ErrSessionExpired = errors.New("session_expired")
)

type sessionRow struct {
	Token     string
	UserID    snowflake.ID
	ExpiresAt time.Time
}

type Params struct {
	fx.In

	Config *config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
}

// Manager resolves session cookies against the sessions table.
type Manager struct {
	cfg   *config.Config
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewManager(p Params) *Manager {
	return &Manager{
		cfg:   p.Config,
		db:    p.DB,
		log:   p.Log.Named("auth.session"),
		clock: p.Clock,
	}
}

// Resolve returns the user ID bound to the session token.
func (m *Manager) Resolve(ctx context.Context, token string) (snowflake.ID, error) {
	if token == "" {
		return 0, ErrNoSession
	}
	var row sessionRow
	err := m.db.WithContext(ctx).Raw(
		`SELECT token, user_id, expires_at FROM sessions WHERE token = ?`,
		token,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.Token == "" {
		return 0, ErrNoSession
	}
	if m.clock.Now().After(row.ExpiresAt) {
		return 0, ErrSessionExpired
	}
	return row.UserID, nil
}

// ResolveRequest reads the session cookie off the request and resolves it.
func (m *Manager) ResolveRequest(r *http.Request) (snowflake.ID, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return 0, ErrNoSession
	}
	return m.Resolve(r.Context(), cookie.Value)
}

var Module = fx.Module("auth.session",
	fx.Provide(NewManager),
)
