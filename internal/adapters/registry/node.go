package registry

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
)

const NodeID graft.ID = "adapter.registry"

func init() {
	graft.Register(graft.Node[ports.RegistryFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.RegistryFactory, error) {
			return func(cfg domain.RegistryConfig) ports.Registry {
				return NewClient(cfg)
			}, nil
		},
	})
}
