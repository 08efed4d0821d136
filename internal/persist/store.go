package persist

import (
	"context"
	"fmt"

	"github.com/hearthmod/attract/internal/config"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

// Store keeps attractor blocks and the world clock between runs. In a full
// deployment the owner subsystem's durable record plays this role; the
// engine only ever talks to it through this interface.
type Store interface {
	LoadBlocks(ctx context.Context) ([]world.Block, error)
	// SaveBlocks replaces each given attractor's stored block.
	SaveBlocks(ctx context.Context, blocks []world.Block) error
	DeleteBlocks(ctx context.Context, ids []world.AttractorID) error
	LoadClock(ctx context.Context) (int64, bool, error)
	SaveClock(ctx context.Context, tick int64) error
	Close() error
}

// Open connects the configured backend and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return NewAttractorRepo(db, cfg.WorldName), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath, cfg.WorldName)
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}
}
