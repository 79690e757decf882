package lockstore

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/zerr"
)

// lockHeader tops every written document. The file is meant to be committed,
// not edited.
const lockHeader = "# env.lock - generated by hale\n" +
	"# DO NOT EDIT MANUALLY - regenerate with \"hale lock\"\n\n"

// lockDocYAML is the wire form of a lock document.
type lockDocYAML struct {
	Schema      string            `yaml:"schema"`
	GeneratedAt time.Time         `yaml:"generated_at"`
	UpdatedAt   time.Time         `yaml:"updated_at"`
	GeneratedBy string            `yaml:"generated_by"`
	Toolchain   toolchainYAML     `yaml:"toolchain"`
	Lockfile    *lockfileYAML     `yaml:"lockfile,omitempty"`
	Frameworks  map[string]string `yaml:"frameworks,omitempty"`
	Platform    *platformYAML     `yaml:"platform,omitempty"`
	Caches      *cachesYAML       `yaml:"caches,omitempty"`
}

type toolchainYAML struct {
	Node                  string `yaml:"node"`
	PackageManager        string `yaml:"package_manager"`
	PackageManagerVersion string `yaml:"package_manager_version"`
}

type lockfileYAML struct {
	Path string `yaml:"path"`
	Type string `yaml:"type"`
	Hash string `yaml:"hash"`
}

type platformYAML struct {
	OS   string `yaml:"os"`
	Arch string `yaml:"arch"`
}

type cachesYAML struct {
	NodeModulesHash string `yaml:"node_modules_hash,omitempty"`
}

func encodeDocument(doc domain.LockDocument) ([]byte, error) {
	fp := doc.Fingerprint

	raw := lockDocYAML{
		Schema:      doc.Schema,
		GeneratedAt: doc.GeneratedAt,
		UpdatedAt:   doc.UpdatedAt,
		GeneratedBy: doc.GeneratedBy,
		Toolchain: toolchainYAML{
			Node:                  fp.RuntimeVersion,
			PackageManager:        fp.PackageManager.Name,
			PackageManagerVersion: fp.PackageManager.Version,
		},
		Frameworks: fp.Frameworks,
	}
	if fp.Lockfile != (domain.LockfileRef{}) {
		raw.Lockfile = &lockfileYAML{
			Path: fp.Lockfile.Path,
			Type: fp.Lockfile.Type,
			Hash: fp.Lockfile.ContentHash,
		}
	}
	if fp.Platform != nil {
		raw.Platform = &platformYAML{OS: fp.Platform.OS, Arch: fp.Platform.Arch}
	}
	if fp.NodeModulesHash != "" {
		raw.Caches = &cachesYAML{NodeModulesHash: fp.NodeModulesHash}
	}

	var buf bytes.Buffer
	buf.WriteString(lockHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return nil, zerr.Wrap(err, "failed to encode lock document")
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to encode lock document")
	}
	return buf.Bytes(), nil
}

func decodeDocument(data []byte) (domain.LockDocument, error) {
	var raw lockDocYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		zErr := zerr.With(zerr.Wrap(domain.ErrLockMalformed, "lock document is not valid YAML"), "detail", err.Error())
		if line := yamlErrorLine(err); line > 0 {
			zErr = zerr.With(zErr, "line", line)
		}
		return domain.LockDocument{}, zErr
	}

	if err := domain.ValidateSchema(raw.Schema); err != nil {
		return domain.LockDocument{}, err
	}

	fp := domain.EnvironmentFingerprint{
		RuntimeVersion: raw.Toolchain.Node,
		PackageManager: domain.PackageManager{
			Name:    raw.Toolchain.PackageManager,
			Version: raw.Toolchain.PackageManagerVersion,
		},
		Frameworks: raw.Frameworks,
	}
	if raw.Lockfile != nil {
		fp.Lockfile = domain.LockfileRef{
			Path:        raw.Lockfile.Path,
			Type:        raw.Lockfile.Type,
			ContentHash: raw.Lockfile.Hash,
		}
	}
	if raw.Platform != nil {
		fp.Platform = &domain.Platform{OS: raw.Platform.OS, Arch: raw.Platform.Arch}
	}
	if raw.Caches != nil {
		fp.NodeModulesHash = raw.Caches.NodeModulesHash
	}

	return domain.LockDocument{
		Schema:      raw.Schema,
		GeneratedAt: raw.GeneratedAt,
		UpdatedAt:   raw.UpdatedAt,
		GeneratedBy: raw.GeneratedBy,
		Fingerprint: fp,
	}, nil
}

// yamlErrorLine digs the "line N" position out of a yaml error message.
// Returns 0 when the error carries none.
func yamlErrorLine(err error) int {
	msg := err.Error()
	idx := strings.Index(msg, "line ")
	if idx < 0 {
		return 0
	}

	n, found := 0, false
	for _, r := range msg[idx+len("line "):] {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		found = true
	}
	if !found {
		return 0
	}
	return n
}
