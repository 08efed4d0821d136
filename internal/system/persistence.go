package system

import (
	"context"
	"time"

	coresys "github.com/hearthmod/attract/internal/core/system"
	"github.com/hearthmod/attract/internal/persist"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

const saveTimeout = 5 * time.Second

// PersistenceSystem periodically saves the attractor blocks that changed
// since the last save, drops blocks of unregistered attractors, and records
// the world clock. Phase 4 (Persist).
type PersistenceSystem struct {
	state    *world.State
	store    persist.Store
	log      *zap.Logger
	interval int64
}

func NewPersistenceSystem(ws *world.State, store persist.Store, log *zap.Logger, intervalTicks int64) *PersistenceSystem {
	return &PersistenceSystem{state: ws, store: store, log: log, interval: intervalTicks}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(tick int64) {
	if tick == 0 || tick%s.interval != 0 {
		return
	}
	// This tick is complete; a restart resumes at the next one.
	if err := s.save(tick+1, true); err != nil {
		s.log.Error("auto-save failed, retrying next interval", zap.Error(err))
	}
}

// SaveAll persists every block regardless of dirty state. Called on
// graceful shutdown; resumeTick is the first tick a restart will simulate.
func (s *PersistenceSystem) SaveAll(resumeTick int64) error {
	return s.save(resumeTick, false)
}

func (s *PersistenceSystem) save(resumeTick int64, dirtyOnly bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	var ids []world.AttractorID
	if dirtyOnly {
		ids = s.state.DirtyIDs()
	} else {
		for _, a := range s.state.Attractors() {
			ids = append(ids, a.ID)
		}
	}
	blocks := make([]world.Block, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.state.ExportBlock(id); ok {
			blocks = append(blocks, b)
		}
	}
	if err := s.store.SaveBlocks(ctx, blocks); err != nil {
		return err
	}
	s.state.ClearDirty(ids)

	if removed := s.state.RemovedIDs(); len(removed) > 0 {
		if err := s.store.DeleteBlocks(ctx, removed); err != nil {
			return err
		}
		s.state.ClearRemoved(removed)
	}
	if err := s.store.SaveClock(ctx, resumeTick); err != nil {
		return err
	}
	if len(blocks) > 0 {
		s.log.Debug("attractor blocks saved",
			zap.Int("blocks", len(blocks)), zap.Int64("resume_tick", resumeTick))
	}
	return nil
}
