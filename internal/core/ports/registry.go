package ports

import (
	"context"

	"go.trai.ch/hale/internal/core/domain"
)

// Registry answers package metadata queries against an npm-compatible registry.
//
//go:generate mockgen -destination=mocks/registry_mock.go -package=mocks -source=registry.go
type Registry interface {
	// Versions lists the published versions of a package in ascending
	// semantic-version order.
	Versions(ctx context.Context, name string) ([]string, error)

	// PeerDependencies returns the peer dependency ranges declared by one
	// published version of a package.
	PeerDependencies(ctx context.Context, name, version string) (map[string]string, error)
}

// RegistryFactory builds a Registry client from project configuration, so a
// per-project registry URL takes effect without rewiring.
type RegistryFactory func(cfg domain.RegistryConfig) Registry
