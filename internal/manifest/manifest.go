// Package manifest loads the YAML file describing which place
// databases a federation should attach and in what order. The document
// is checked against an embedded CUE schema before any path is touched,
// so shape errors surface with field-level messages instead of failing
// halfway through an attach.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// schema constrains the manifest document. Attach order is the order
// of the sources list; the first source listed wins identifier
// conflicts.
const schema = `
#Source: {
	path:   string & !=""
	alias?: string & =~"^[a-zA-Z_][a-zA-Z0-9_]*$"
}

#Manifest: {
	name?:   string
	sources: [#Source, ...#Source]
	defaults?: {
		limit?:   int & >=0
		sort_by?: "id" | "name" | "placetype" | "country" | "lastmodified"
		order?:   "asc" | "desc"
	}
}
`

// Source names one database to attach.
type Source struct {
	Path  string `yaml:"path" json:"path"`
	Alias string `yaml:"alias,omitempty" json:"alias,omitempty"`
}

// Defaults are query settings applied when a caller leaves them unset.
type Defaults struct {
	Limit  int    `yaml:"limit,omitempty" json:"limit,omitempty"`
	SortBy string `yaml:"sort_by,omitempty" json:"sort_by,omitempty"`
	Order  string `yaml:"order,omitempty" json:"order,omitempty"`
}

// Manifest is a parsed, schema-checked source manifest.
type Manifest struct {
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	Sources  []Source `yaml:"sources" json:"sources"`
	Defaults Defaults `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// dir is the manifest file's directory; relative source paths
	// resolve against it.
	dir string
}

// Load reads, parses, and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse parses and validates manifest bytes. Relative source paths in
// a parsed-only manifest resolve against the working directory.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// validate unifies the parsed document with the embedded schema.
func validate(m *Manifest) error {
	ctx := cuecontext.New()
	sv := ctx.CompileString(schema)
	if err := sv.Err(); err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}
	def := sv.LookupPath(cue.ParsePath("#Manifest"))
	if !def.Exists() {
		return fmt.Errorf("manifest schema has no #Manifest definition")
	}

	doc := ctx.Encode(m)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}

// Paths returns the source paths in attach order, relative paths
// resolved against the manifest's directory.
func (m *Manifest) Paths() []string {
	out := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		p := s.Path
		if m.dir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(m.dir, p)
		}
		out[i] = p
	}
	return out
}
