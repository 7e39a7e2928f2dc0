package source

import (
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/reconcile"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// ManifestFileName is the optional migration-hint file in the source root.
const ManifestFileName = "manifest.yaml"

// manifestDoc is the on-disk shape of manifest.yaml.
type manifestDoc struct {
	Renames []struct {
		Type types.ItemType `yaml:"type"`
		From string         `yaml:"from"`
		To   string         `yaml:"to"`
	} `yaml:"renames"`
}

// LoadManifest reads the optional rename manifest from the source root. A
// missing file yields nil; a malformed one is an error.
func LoadManifest(filesystem types.FS, root string) (*reconcile.Manifest, error) {
	path := filepath.Join(root, ManifestFileName)
	raw, err := filesystem.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "failed to read %s", path)
	}

	var doc manifestDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "failed to parse %s", path)
	}

	m := &reconcile.Manifest{}
	for _, r := range doc.Renames {
		if !r.Type.IsValid() || r.From == "" || r.To == "" {
			return nil, errors.Newf(errors.ErrSourceInvalid,
				"invalid rename entry in %s: type %q from %q to %q", path, r.Type, r.From, r.To)
		}
		m.Renames = append(m.Renames, reconcile.Rename{Type: r.Type, FromItem: r.From, ToItem: r.To})
	}
	return m, nil
}
