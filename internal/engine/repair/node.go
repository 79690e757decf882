package repair

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/hale/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hale/internal/adapters/shell"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hale/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hale/internal/core/ports"
)

const NodeID graft.ID = "engine.repair"

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, progrock.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Executor, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(runner, tel, log), nil
		},
	})
}
