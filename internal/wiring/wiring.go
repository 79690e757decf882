// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/hale/internal/adapters/config"
	_ "go.trai.ch/hale/internal/adapters/flock"
	_ "go.trai.ch/hale/internal/adapters/lockstore"
	_ "go.trai.ch/hale/internal/adapters/logger"
	_ "go.trai.ch/hale/internal/adapters/probe"
	_ "go.trai.ch/hale/internal/adapters/registry"
	_ "go.trai.ch/hale/internal/adapters/shell"
	_ "go.trai.ch/hale/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/hale/internal/app"
	_ "go.trai.ch/hale/internal/engine/doctor"
	_ "go.trai.ch/hale/internal/engine/planner"
	_ "go.trai.ch/hale/internal/engine/repair"
	_ "go.trai.ch/hale/internal/engine/resolver"
)
