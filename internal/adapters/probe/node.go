package probe

import (
	"context"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/grindlemire/graft"

	"go.trai.ch/hale/internal/adapters/shell"
	"go.trai.ch/hale/internal/core/ports"
)

const NodeID graft.ID = "adapter.prober"

func init() {
	graft.Register(graft.Node[ports.Prober]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.Prober, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			// Rooting at "/" lets absolute project roots pass through.
			return NewProber(osfs.New("/"), runner), nil
		},
	})
}
