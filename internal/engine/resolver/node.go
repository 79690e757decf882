package resolver

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/hale/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hale/internal/core/ports"
)

const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
