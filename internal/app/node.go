package app

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/hale/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/hale/internal/adapters/flock"              //nolint:depguard // Wired in app layer
	"go.trai.ch/hale/internal/adapters/lockstore"          //nolint:depguard // Wired in app layer
	"go.trai.ch/hale/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/hale/internal/adapters/probe"              //nolint:depguard // Wired in app layer
	"go.trai.ch/hale/internal/adapters/registry"           //nolint:depguard // Wired in app layer
	"go.trai.ch/hale/internal/adapters/shell"              //nolint:depguard // Wired in app layer
	"go.trai.ch/hale/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer

	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/hale/internal/engine/doctor"
	"go.trai.ch/hale/internal/engine/planner"
	"go.trai.ch/hale/internal/engine/repair"
	"go.trai.ch/hale/internal/engine/resolver"
)

const (
	// AppNodeID identifies the assembled application in the graft graph.
	AppNodeID graft.ID = "app.main"

	// ComponentsNodeID identifies the bundle the CLI entry point consumes.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles what the CLI needs beyond the App itself: the logger
// for error reporting and the telemetry sink to close on exit.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			progrock.NodeID,
			shell.NodeID,
			probe.NodeID,
			config.NodeID,
			lockstore.NodeID,
			flock.NodeID,
			registry.NodeID,
			doctor.NodeID,
			planner.NodeID,
			repair.NodeID,
			resolver.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			prober, err := graft.Dep[ports.Prober](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			stores, err := graft.Dep[ports.LockStoreFactory](ctx)
			if err != nil {
				return nil, err
			}
			lockers, err := graft.Dep[ports.LockerFactory](ctx)
			if err != nil {
				return nil, err
			}
			registries, err := graft.Dep[ports.RegistryFactory](ctx)
			if err != nil {
				return nil, err
			}
			doc, err := graft.Dep[*doctor.Engine](ctx)
			if err != nil {
				return nil, err
			}
			plan, err := graft.Dep[*planner.Planner](ctx)
			if err != nil {
				return nil, err
			}
			rep, err := graft.Dep[*repair.Executor](ctx)
			if err != nil {
				return nil, err
			}
			res, err := graft.Dep[*resolver.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			return New(Deps{
				Logger:     log,
				Telemetry:  tel,
				Prober:     prober,
				Runner:     runner,
				Config:     loader,
				Doctor:     doc,
				Planner:    plan,
				Repairer:   rep,
				Resolver:   res,
				Stores:     stores,
				Lockers:    lockers,
				Registries: registries,
			}), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID, progrock.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log, Telemetry: tel}, nil
		},
	})
}
