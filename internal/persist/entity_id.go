package persist

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hearthmod/attract/internal/world"
)

func parseEntityID(s string) (world.EntityID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return world.EntityID{}, fmt.Errorf("bad entity id %q: %w", s, err)
	}
	return id, nil
}
