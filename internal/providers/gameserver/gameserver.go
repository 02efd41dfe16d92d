package gameserver

import (
	"context"
	"strings"

	"github.com/nightmarket/aestore/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Code is one redemption code pushed into the game server database so the
// in-game redeem command can find it.
type Code struct {
	Code         string
	AecoinAmount int64
}

// Sink delivers issued codes to the game world. Push failures never void a
// sale; the code remains redeemable from order history.
type Sink interface {
	PushCode(ctx context.Context, code Code) error
}

type dbSink struct {
	conn *gorm.DB
	log  *zap.Logger
}

// NewSink connects to the game server's MySQL database when a DSN is
// configured, otherwise degrades to a logging no-op.
func NewSink(cfg *config.Config, log *zap.Logger) (Sink, error) {
	dsn := strings.TrimSpace(cfg.GameServerDSN)
	if dsn == "" {
		return NewNoop(log), nil
	}

	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return &dbSink{conn: conn, log: log.Named("providers.gameserver")}, nil
}

func (s *dbSink) PushCode(ctx context.Context, code Code) error {
	return s.conn.WithContext(ctx).Exec(
		`INSERT INTO redeem_codes (code, coins, used) VALUES (?, ?, 0)`,
		code.Code, code.AecoinAmount,
	).Error
}

type noopSink struct {
	log *zap.Logger
}

func NewNoop(log *zap.Logger) Sink {
	return &noopSink{log: log.Named("providers.gameserver")}
}

func (s *noopSink) PushCode(ctx context.Context, code Code) error {
	s.log.Info("code push suppressed, game server not configured",
		zap.String("code", code.Code),
	)
	return nil
}

var Module = fx.Module("providers.gameserver",
	fx.Provide(NewSink),
)
