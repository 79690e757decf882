package planner

import (
	"context"

	"github.com/grindlemire/graft"
)

const NodeID graft.ID = "engine.planner"

func init() {
	graft.Register(graft.Node[*Planner]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Planner, error) {
			return New(), nil
		},
	})
}
