package providers

import (
	"encoding/json"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// Document is one markdown source item with its frontmatter already split
// out. Raw holds the full original file, Body the content below the
// frontmatter fence. Config items carry the canonical YAML in Raw.
type Document struct {
	Name        string
	Description string
	Model       string
	Tools       []string
	Raw         []byte
	Body        []byte
}

// codexPrompt is the TOML shape codex expects for prompt-style items. Field
// order here fixes the output order, so conversion is byte-stable.
type codexPrompt struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description,omitempty"`
	Model       string   `toml:"model,omitempty"`
	Tools       []string `toml:"tools,omitempty"`
	Prompt      string   `toml:"prompt"`
}

// Convert renders a source document into the byte format the provider
// expects. Most providers take markdown verbatim; codex takes TOML, and
// config items are rendered from canonical YAML into each provider's
// settings format.
func Convert(provider string, it types.ItemType, doc Document) ([]byte, error) {
	if it == types.ItemTypeConfig {
		return convertConfig(provider, doc.Raw)
	}
	if provider == Codex {
		out, err := toml.Marshal(codexPrompt{
			Name:        doc.Name,
			Description: doc.Description,
			Model:       doc.Model,
			Tools:       doc.Tools,
			Prompt:      string(doc.Body),
		})
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConvertFailed, "failed to render %s for codex", doc.Name)
		}
		return out, nil
	}
	return doc.Raw, nil
}

// convertConfig renders the canonical YAML config into the provider's
// settings file format: TOML for codex, pretty JSON for everyone else.
func convertConfig(provider string, raw []byte) ([]byte, error) {
	var values map[string]interface{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrap(err, errors.ErrConvertFailed, "failed to parse canonical config")
	}
	if values == nil {
		values = map[string]interface{}{}
	}

	if provider == Codex {
		out, err := toml.Marshal(values)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConvertFailed, "failed to render config as TOML")
		}
		return out, nil
	}

	out, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConvertFailed, "failed to render config as JSON")
	}
	return append(out, '\n'), nil
}
