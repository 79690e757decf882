package lockstore

import (
	"context"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/grindlemire/graft"

	"go.trai.ch/hale/internal/core/ports"
)

const NodeID graft.ID = "adapter.lockstore"

func init() {
	graft.Register(graft.Node[ports.LockStoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.LockStoreFactory, error) {
			fs := osfs.New("/")
			return func(root string) ports.LockStore {
				return NewStore(fs, root)
			}, nil
		},
	})
}
