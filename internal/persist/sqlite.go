package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hearthmod/attract/internal/world"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps attractor blocks in a single-file database next to a
// local world save.
type SQLiteStore struct {
	conn      *sqlx.DB
	worldName string
}

type stateRow struct {
	AttractorID   int64  `db:"attractor_id"`
	Kind          string `db:"kind"`
	LastSpawnTick int64  `db:"last_spawn_tick"`
}

type trackedRow struct {
	EntityID    string `db:"entity_id"`
	AttractorID int64  `db:"attractor_id"`
	SpawnTick   int64  `db:"spawn_tick"`
	Disposition int    `db:"disposition"`
}

// OpenSQLite opens or creates the database at path and migrates it.
func OpenSQLite(ctx context.Context, path, worldName string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; the game loop is the only caller.
	conn.SetMaxOpenConns(1)

	if err := RunSQLiteMigrations(ctx, conn.DB); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{conn: conn, worldName: worldName}, nil
}

func (s *SQLiteStore) LoadBlocks(ctx context.Context) ([]world.Block, error) {
	var states []stateRow
	if err := s.conn.SelectContext(ctx, &states,
		`SELECT attractor_id, kind, last_spawn_tick FROM attractor_state ORDER BY attractor_id`); err != nil {
		return nil, fmt.Errorf("load attractor state: %w", err)
	}
	var tracked []trackedRow
	if err := s.conn.SelectContext(ctx, &tracked,
		`SELECT entity_id, attractor_id, spawn_tick, disposition
		 FROM tracked_entities ORDER BY attractor_id, spawn_tick, entity_id`); err != nil {
		return nil, fmt.Errorf("load tracked entities: %w", err)
	}

	blocks := make([]world.Block, len(states))
	index := make(map[int64]int, len(states))
	for i, st := range states {
		index[st.AttractorID] = i
		blocks[i] = world.Block{
			AttractorID:   world.AttractorID(st.AttractorID),
			Kind:          world.Kind(st.Kind),
			LastSpawnTick: st.LastSpawnTick,
		}
	}
	for _, tr := range tracked {
		i, ok := index[tr.AttractorID]
		if !ok {
			continue
		}
		id, err := parseEntityID(tr.EntityID)
		if err != nil {
			return nil, err
		}
		blocks[i].Rows = append(blocks[i].Rows, world.BlockRow{
			EntityID:    id,
			SpawnTick:   tr.SpawnTick,
			Disposition: world.Disposition(tr.Disposition),
		})
	}
	return blocks, nil
}

func (s *SQLiteStore) SaveBlocks(ctx context.Context, blocks []world.Block) error {
	if len(blocks) == 0 {
		return nil
	}
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save blocks begin: %w", err)
	}
	defer tx.Rollback()

	for _, b := range blocks {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO attractor_state (attractor_id, kind, last_spawn_tick, updated_at)
			 VALUES (:attractor_id, :kind, :last_spawn_tick, CURRENT_TIMESTAMP)
			 ON CONFLICT (attractor_id) DO UPDATE
			 SET kind = excluded.kind, last_spawn_tick = excluded.last_spawn_tick, updated_at = CURRENT_TIMESTAMP`,
			stateRow{AttractorID: int64(b.AttractorID), Kind: string(b.Kind), LastSpawnTick: b.LastSpawnTick},
		); err != nil {
			return fmt.Errorf("save attractor %d: %w", b.AttractorID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tracked_entities WHERE attractor_id = ?`, int64(b.AttractorID)); err != nil {
			return fmt.Errorf("clear tracked of %d: %w", b.AttractorID, err)
		}
		for _, row := range b.Rows {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT OR REPLACE INTO tracked_entities (entity_id, attractor_id, spawn_tick, disposition)
				 VALUES (:entity_id, :attractor_id, :spawn_tick, :disposition)`,
				trackedRow{
					EntityID:    row.EntityID.String(),
					AttractorID: int64(b.AttractorID),
					SpawnTick:   row.SpawnTick,
					Disposition: int(row.Disposition),
				},
			); err != nil {
				return fmt.Errorf("save tracked %s: %w", row.EntityID, err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) DeleteBlocks(ctx context.Context, ids []world.AttractorID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"tracked_entities", "attractor_state"} {
		q, args, err := sqlx.In(`DELETE FROM `+table+` WHERE attractor_id IN (?)`, raw)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadClock(ctx context.Context) (int64, bool, error) {
	var tick int64
	err := s.conn.GetContext(ctx, &tick, `SELECT tick FROM world_clock WHERE world_name = ?`, s.worldName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return tick, true, nil
}

func (s *SQLiteStore) SaveClock(ctx context.Context, tick int64) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO world_clock (world_name, tick) VALUES (?, ?)
		 ON CONFLICT (world_name) DO UPDATE SET tick = excluded.tick`,
		s.worldName, tick)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
