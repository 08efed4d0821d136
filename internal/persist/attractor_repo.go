package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/hearthmod/attract/internal/world"
	"github.com/jackc/pgx/v5"
)

// AttractorRepo stores attractor blocks in Postgres.
type AttractorRepo struct {
	db        *DB
	worldName string
}

func NewAttractorRepo(db *DB, worldName string) *AttractorRepo {
	return &AttractorRepo{db: db, worldName: worldName}
}

// LoadBlocks loads every stored block. Called once at startup.
func (r *AttractorRepo) LoadBlocks(ctx context.Context) ([]world.Block, error) {
	stateRows, err := r.db.Pool.Query(ctx,
		`SELECT attractor_id, kind, last_spawn_tick
		 FROM attractor_state ORDER BY attractor_id`)
	if err != nil {
		return nil, err
	}
	defer stateRows.Close()

	var blocks []world.Block
	index := make(map[world.AttractorID]int)
	for stateRows.Next() {
		var (
			id   int64
			kind string
			last int64
		)
		if err := stateRows.Scan(&id, &kind, &last); err != nil {
			return nil, err
		}
		index[world.AttractorID(id)] = len(blocks)
		blocks = append(blocks, world.Block{
			AttractorID:   world.AttractorID(id),
			Kind:          world.Kind(kind),
			LastSpawnTick: last,
		})
	}
	if err := stateRows.Err(); err != nil {
		return nil, err
	}

	trackedRows, err := r.db.Pool.Query(ctx,
		`SELECT entity_id, attractor_id, spawn_tick, disposition
		 FROM tracked_entities ORDER BY attractor_id, spawn_tick`)
	if err != nil {
		return nil, err
	}
	defer trackedRows.Close()

	for trackedRows.Next() {
		var (
			row   world.BlockRow
			owner int64
			disp  int16
		)
		if err := trackedRows.Scan(&row.EntityID, &owner, &row.SpawnTick, &disp); err != nil {
			return nil, err
		}
		i, ok := index[world.AttractorID(owner)]
		if !ok {
			continue
		}
		row.Disposition = world.Disposition(disp)
		blocks[i].Rows = append(blocks[i].Rows, row)
	}
	if err := trackedRows.Err(); err != nil {
		return nil, err
	}

	return blocks, nil
}

// SaveBlocks replaces the given blocks in a single transaction.
func (r *AttractorRepo) SaveBlocks(ctx context.Context, blocks []world.Block) error {
	if len(blocks) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save blocks begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, b := range blocks {
		batch.Queue(
			`INSERT INTO attractor_state (attractor_id, kind, last_spawn_tick, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (attractor_id) DO UPDATE
			 SET kind = EXCLUDED.kind, last_spawn_tick = EXCLUDED.last_spawn_tick, updated_at = now()`,
			int64(b.AttractorID), string(b.Kind), b.LastSpawnTick)
		batch.Queue(`DELETE FROM tracked_entities WHERE attractor_id = $1`, int64(b.AttractorID))
		for _, row := range b.Rows {
			batch.Queue(
				`INSERT INTO tracked_entities (entity_id, attractor_id, spawn_tick, disposition)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (entity_id) DO UPDATE
				 SET attractor_id = EXCLUDED.attractor_id, spawn_tick = EXCLUDED.spawn_tick,
				     disposition = EXCLUDED.disposition`,
				row.EntityID, int64(b.AttractorID), row.SpawnTick, int16(row.Disposition))
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save blocks: %w", err)
	}
	return tx.Commit(ctx)
}

// DeleteBlocks removes blocks of destroyed attractors; tracked rows cascade.
func (r *AttractorRepo) DeleteBlocks(ctx context.Context, ids []world.AttractorID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM attractor_state WHERE attractor_id = ANY($1)`, raw)
	return err
}

// LoadClock returns the saved world tick; ok is false on a fresh database.
func (r *AttractorRepo) LoadClock(ctx context.Context) (int64, bool, error) {
	var tick int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT tick FROM world_clock WHERE world_name = $1`, r.worldName).Scan(&tick)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return tick, true, nil
}

func (r *AttractorRepo) SaveClock(ctx context.Context, tick int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO world_clock (world_name, tick) VALUES ($1, $2)
		 ON CONFLICT (world_name) DO UPDATE SET tick = EXCLUDED.tick`,
		r.worldName, tick)
	return err
}

func (r *AttractorRepo) Close() error {
	r.db.Close()
	return nil
}
