package doctor

import (
	"github.com/go-git/go-billy/v5"

	"go.trai.ch/hale/internal/core/ports"
)

// NewWithChecks creates an engine running an explicit check list.
// This is exported for testing purposes only.
func NewWithChecks(log ports.Logger, runner ports.CommandRunner, fs billy.Filesystem, checks []Check) *Engine {
	return &Engine{log: log, runner: runner, fs: fs, checks: checks}
}

// Check constructors exported for testing purposes only.
func NewRuntimeCheck() Check             { return &runtimeCheck{} }
func NewPackageManagerCheck() Check      { return &packageManagerCheck{} }
func NewCorepackCheck() Check            { return &corepackCheck{} }
func NewLockfilePresenceCheck() Check    { return &lockfilePresenceCheck{} }
func NewLockfileConsistencyCheck() Check { return &lockfileConsistencyCheck{} }
func NewInstalledDepsCheck() Check       { return &installedDepsCheck{} }
func NewDeprecatedDepsCheck() Check      { return &deprecatedDepsCheck{} }
func NewDriftCheck() Check               { return &driftCheck{} }
func NewFrameworksCheck() Check          { return &frameworksCheck{} }
func NewNodeModulesCacheCheck() Check    { return &nodeModulesCacheCheck{} }
func NewNextCacheCheck() Check           { return &nextCacheCheck{} }
