// Package scene loads YAML scene files describing a grid's size, pacing and
// initial figures.
package scene

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"lifegrid/internal/sequencer"
	"lifegrid/pkg/sims/life"
)

//go:embed scene.cue
var schemaCUE string

// Stamp places a named figure with its top-left corner at (Row, Col).
type Stamp struct {
	Figure string `yaml:"figure" json:"figure"`
	Row    int    `yaml:"row" json:"row"`
	Col    int    `yaml:"col" json:"col"`
}

// Scene is the decoded form of a scene file.
type Scene struct {
	Name     string   `yaml:"name" json:"name"`
	Rows     int      `yaml:"rows" json:"rows"`
	Cols     int      `yaml:"cols" json:"cols"`
	Seed     int64    `yaml:"seed" json:"seed"`
	Density  float64  `yaml:"density" json:"density"`
	TPS      int      `yaml:"tps" json:"tps"`
	Steps    int      `yaml:"steps" json:"steps"`
	Stamps   []Stamp  `yaml:"stamps,omitempty" json:"stamps,omitempty"`
	Commands []string `yaml:"commands,omitempty" json:"commands,omitempty"`
}

// Default returns a scene with the sequencer's default settings.
func Default() *Scene {
	c := sequencer.DefaultConfig()
	return &Scene{
		Name:  "default",
		Rows:  c.Rows,
		Cols:  c.Cols,
		TPS:   c.TPS,
		Steps: c.Steps,
	}
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML scene on top of Default and validates it. Unknown
// fields are rejected.
func Parse(data []byte) (*Scene, error) {
	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}
	return s, nil
}

// Validate checks the scene against the embedded CUE schema and resolves
// every figure name.
func (s *Scene) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Scene"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	// nil slices encode as null, which the list fields do not accept.
	doc := *s
	if doc.Stamps == nil {
		doc.Stamps = []Stamp{}
	}
	if doc.Commands == nil {
		doc.Commands = []string{}
	}
	v := schema.Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", cueerrors.Details(err, nil))
	}
	for i, st := range s.Stamps {
		if _, err := life.Lookup(st.Figure); err != nil {
			return fmt.Errorf("stamps[%d]: %w", i, err)
		}
	}
	return nil
}

// Config converts the scene into a sequencer configuration.
func (s *Scene) Config() sequencer.Config {
	return sequencer.Config{
		Rows:    s.Rows,
		Cols:    s.Cols,
		Seed:    s.Seed,
		Density: s.Density,
		TPS:     s.TPS,
		Steps:   s.Steps,
	}
}

// Apply stamps the scene's figures and then runs its commands.
func (s *Scene) Apply(seq *sequencer.Sequencer) error {
	g := seq.Grid()
	for i, st := range s.Stamps {
		f, err := life.Lookup(st.Figure)
		if err != nil {
			return fmt.Errorf("stamps[%d]: %w", i, err)
		}
		if err := g.AddFigure(uint16(st.Row), uint16(st.Col), f); err != nil {
			return fmt.Errorf("stamps[%d]: %w", i, err)
		}
	}
	return seq.ApplyAll(s.Commands)
}

// Build constructs a sequencer from the scene and applies it.
func (s *Scene) Build(opts ...sequencer.Option) (*sequencer.Sequencer, error) {
	seq, err := sequencer.New(s.Config(), opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(seq); err != nil {
		return nil, err
	}
	return seq, nil
}
