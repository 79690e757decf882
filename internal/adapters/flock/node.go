package flock

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/hale/internal/core/ports"
)

const NodeID graft.ID = "adapter.flock"

func init() {
	graft.Register(graft.Node[ports.LockerFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.LockerFactory, error) {
			return func(path string) ports.Locker {
				return NewLocker(path)
			}, nil
		},
	})
}
