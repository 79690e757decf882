package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.trai.ch/hale/internal/core/domain"
)

func TestManifest_DeclaredDependencies(t *testing.T) {
	m := domain.Manifest{
		Dependencies: map[string]string{
			"react": "^18.2.0",
			"next":  "14.1.0",
		},
		DevDependencies: map[string]string{
			"typescript": "~5.3.3",
			"react":      "^17.0.0",
		},
	}

	got := m.DeclaredDependencies()

	// The runtime section wins when a name is declared in both.
	assert.Equal(t, map[string]string{
		"react":      "^18.2.0",
		"next":       "14.1.0",
		"typescript": "~5.3.3",
	}, got)
}

func TestManifest_DeclaredDependencies_Empty(t *testing.T) {
	assert.Empty(t, domain.Manifest{}.DeclaredDependencies())
}
