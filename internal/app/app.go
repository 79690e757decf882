// Package app wires the engines and adapters into the operations the CLI
// exposes. Every command maps onto one method of App; the methods own the
// orchestration (locking, probing, reading and rewriting the lock document)
// while the engines stay pure.
package app

import (
	"fmt"

	"go.trai.ch/hale/internal/build"
	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/hale/internal/engine/doctor"
	"go.trai.ch/hale/internal/engine/planner"
	"go.trai.ch/hale/internal/engine/repair"
	"go.trai.ch/hale/internal/engine/resolver"
)

// App is the application layer of hale.
type App struct {
	log        ports.Logger
	tel        ports.Telemetry
	prober     ports.Prober
	runner     ports.CommandRunner
	config     ports.ConfigLoader
	doctor     *doctor.Engine
	planner    *planner.Planner
	repairer   *repair.Executor
	resolver   *resolver.Resolver
	stores     ports.LockStoreFactory
	lockers    ports.LockerFactory
	registries ports.RegistryFactory
}

// Deps carries the dependencies of an App. All fields are required.
type Deps struct {
	Logger     ports.Logger
	Telemetry  ports.Telemetry
	Prober     ports.Prober
	Runner     ports.CommandRunner
	Config     ports.ConfigLoader
	Doctor     *doctor.Engine
	Planner    *planner.Planner
	Repairer   *repair.Executor
	Resolver   *resolver.Resolver
	Stores     ports.LockStoreFactory
	Lockers    ports.LockerFactory
	Registries ports.RegistryFactory
}

// New creates an App from its dependencies.
func New(d Deps) *App {
	return &App{
		log:        d.Logger,
		tel:        d.Telemetry,
		prober:     d.Prober,
		runner:     d.Runner,
		config:     d.Config,
		doctor:     d.Doctor,
		planner:    d.Planner,
		repairer:   d.Repairer,
		resolver:   d.Resolver,
		stores:     d.Stores,
		lockers:    d.Lockers,
		registries: d.Registries,
	}
}

// generatedBy identifies this binary in lock documents it writes.
func generatedBy() string {
	return "hale@" + build.Version
}

func (a *App) release(lock ports.Locker) {
	if err := lock.Release(); err != nil {
		a.log.Warn(fmt.Sprintf("failed to release the project lock: %v", err))
	}
}
