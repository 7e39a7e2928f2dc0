package source

import (
	"bytes"

	yaml "gopkg.in/yaml.v3"

	"github.com/agentsync-dev/agentsync/pkg/errors"
)

// Frontmatter is the YAML header of a markdown source item.
type Frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Model       string   `yaml:"model"`
	Tools       []string `yaml:"tools"`
}

var fence = []byte("---")

// SplitFrontmatter separates a markdown document into its YAML frontmatter
// and body. A document without a frontmatter fence yields a zero Frontmatter
// and the full content as body. A fence that opens but never closes, or
// frontmatter that is not valid YAML, is an error.
func SplitFrontmatter(content []byte) (Frontmatter, []byte, error) {
	var fm Frontmatter

	if !bytes.HasPrefix(content, fence) {
		return fm, content, nil
	}
	rest := content[len(fence):]
	if len(rest) > 0 && rest[0] == '\r' {
		rest = rest[1:]
	}
	if len(rest) == 0 || rest[0] != '\n' {
		// "---" starting a horizontal rule, not a fence
		return fm, content, nil
	}
	rest = rest[1:]

	end := bytes.Index(rest, append([]byte("\n"), fence...))
	if end < 0 {
		return fm, nil, errors.New(errors.ErrSourceInvalid, "frontmatter fence never closes")
	}
	header := rest[:end]
	body := rest[end+1+len(fence):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}

	if err := yaml.Unmarshal(header, &fm); err != nil {
		return fm, nil, errors.Wrap(err, errors.ErrSourceInvalid, "frontmatter is not valid YAML")
	}
	return fm, body, nil
}
