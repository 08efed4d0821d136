package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hearthmod/attract/internal/config"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

func sampleBlocks() []world.Block {
	return []world.Block{
		{
			AttractorID:   1,
			Kind:          "town_hall",
			LastSpawnTick: 2600,
			Rows: []world.BlockRow{
				{EntityID: uuid.MustParse("6f1c2a9e-8d3b-4c55-9a0e-1b2c3d4e5f60"), SpawnTick: 200, Disposition: world.Stay},
				{EntityID: uuid.MustParse("0a0b0c0d-0e0f-4011-8213-141516171819"), SpawnTick: 2600, Disposition: world.Leave},
			},
		},
		{AttractorID: 2, Kind: "market_stall", LastSpawnTick: world.NeverSpawned},
	}
}

// exerciseStore runs the same save/load/delete cycle against any backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.LoadClock(ctx); err != nil || ok {
		t.Fatalf("fresh clock ok=%v err=%v", ok, err)
	}
	if err := s.SaveBlocks(ctx, sampleBlocks()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveClock(ctx, 2601); err != nil {
		t.Fatalf("save clock: %v", err)
	}

	blocks, err := s.LoadBlocks(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks=%d want=2", len(blocks))
	}
	b := blocks[0]
	if b.AttractorID != 1 || b.Kind != "town_hall" || b.LastSpawnTick != 2600 || len(b.Rows) != 2 {
		t.Fatalf("block 1=%+v", b)
	}
	if b.Rows[0].SpawnTick != 200 || b.Rows[0].Disposition != world.Stay || b.Rows[1].Disposition != world.Leave {
		t.Fatalf("rows=%+v", b.Rows)
	}
	if b.Rows[0].EntityID != sampleBlocks()[0].Rows[0].EntityID {
		t.Fatalf("entity id=%v", b.Rows[0].EntityID)
	}
	if blocks[1].LastSpawnTick != world.NeverSpawned || len(blocks[1].Rows) != 0 {
		t.Fatalf("block 2=%+v", blocks[1])
	}

	// Saving a block replaces its rows.
	shrunk := sampleBlocks()[0]
	shrunk.Rows = shrunk.Rows[1:]
	if err := s.SaveBlocks(ctx, []world.Block{shrunk}); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if err := s.DeleteBlocks(ctx, []world.AttractorID{2}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	blocks, err = s.LoadBlocks(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(blocks) != 1 || len(blocks[0].Rows) != 1 || blocks[0].Rows[0].SpawnTick != 2600 {
		t.Fatalf("after resave/delete=%+v", blocks)
	}

	tick, ok, err := s.LoadClock(ctx)
	if err != nil || !ok || tick != 2601 {
		t.Fatalf("clock=%d ok=%v err=%v", tick, ok, err)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sub", "world.db"), "overworld")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "world.db")
	s, err := OpenSQLite(ctx, path, "overworld")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveBlocks(ctx, sampleBlocks()); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Migrations are idempotent on an existing database.
	s, err = OpenSQLite(ctx, path, "overworld")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	blocks, err := s.LoadBlocks(ctx)
	if err != nil || len(blocks) != 2 {
		t.Fatalf("blocks=%d err=%v", len(blocks), err)
	}
	if _, ok, _ := s.LoadClock(ctx); ok {
		t.Fatalf("clock of another run leaked in")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Backend: "mysql"}, zap.NewNop())
	if err == nil {
		t.Fatalf("unknown backend accepted")
	}
}

// Needs a disposable database: LIFESIM_TEST_PG_DSN=postgres://...
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("LIFESIM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("LIFESIM_TEST_PG_DSN not set")
	}
	cfg := config.Defaults().Database
	cfg.Backend = "postgres"
	cfg.DSN = dsn
	cfg.WorldName = "test-" + uuid.NewString()

	s, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	repo := s.(*AttractorRepo)
	if _, err := repo.db.Pool.Exec(context.Background(),
		`TRUNCATE attractor_state, tracked_entities`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	exerciseStore(t, s)
}
