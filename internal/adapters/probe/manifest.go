package probe

import (
	"encoding/json"

	"github.com/go-git/go-billy/v5/util"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/zerr"
)

// manifestName is the project manifest file name.
const manifestName = "package.json"

// manifestJSON mirrors the package.json fields the probe cares about.
type manifestJSON struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	PackageManager   string            `json:"packageManager"`
	Engines          map[string]string `json:"engines"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// ReadManifest parses the project manifest at root.
func (p *Prober) ReadManifest(root string) (domain.Manifest, error) {
	path := p.fs.Join(root, manifestName)

	data, err := util.ReadFile(p.fs, path)
	if err != nil {
		return domain.Manifest{}, zerr.With(domain.ErrProbeUnreadable, "path", path)
	}

	var raw manifestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Manifest{}, zerr.With(zerr.With(
			zerr.Wrap(domain.ErrProbeUnreadable, "manifest is not valid JSON"),
			"path", path), "parse_error", err.Error())
	}

	return domain.Manifest{
		Name:             raw.Name,
		Version:          raw.Version,
		PackageManager:   raw.PackageManager,
		Engines:          raw.Engines,
		Dependencies:     raw.Dependencies,
		DevDependencies:  raw.DevDependencies,
		PeerDependencies: raw.PeerDependencies,
	}, nil
}
