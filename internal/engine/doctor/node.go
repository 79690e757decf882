package doctor

import (
	"context"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/grindlemire/graft"

	"go.trai.ch/hale/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hale/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hale/internal/core/ports"
)

const NodeID graft.ID = "engine.doctor"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, shell.NodeID},
		Run: func(ctx context.Context) (*Engine, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			return New(log, runner, osfs.New("/")), nil
		},
	})
}
