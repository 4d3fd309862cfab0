package life

import (
	"strconv"

	"lifegrid/pkg/core"
)

// Config holds the parameters used when constructing a grid from the registry.
type Config struct {
	Rows    uint16
	Cols    uint16
	Density float64
	Seed    int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Rows: DefaultRows, Cols: DefaultCols, Density: DefaultDensity}
}

// FromMap populates a Config from a string map. Invalid values keep the default.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["rows"]; ok {
		if parsed, err := strconv.ParseUint(v, 10, 16); err == nil && parsed > 0 {
			c.Rows = uint16(parsed)
		}
	}
	if v, ok := cfg["cols"]; ok {
		if parsed, err := strconv.ParseUint(v, 10, 16); err == nil && parsed > 0 {
			c.Cols = uint16(parsed)
		}
	}
	if int(c.Rows)*int(c.Cols) > MaxCells {
		c.Rows, c.Cols = DefaultRows, DefaultCols
	}
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Density = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	return c
}

// NewWithConfig returns a grid sized and seeded from cfg. The grid starts dead;
// call Reset to fill it at cfg.Density.
func NewWithConfig(cfg Config) *Grid {
	g := New()
	if err := g.Set(cfg.Rows, cfg.Cols); err != nil {
		_ = g.Set(DefaultRows, DefaultCols)
	}
	g.density = cfg.Density
	g.Seed(cfg.Seed)
	return g
}

// Name returns the simulation identifier.
func (g *Grid) Name() string { return "life" }

// Size returns the grid dimensions.
func (g *Grid) Size() core.Size { return core.Size{W: int(g.cols), H: int(g.rows)} }

// Reset reseeds the random source and refills the board.
func (g *Grid) Reset(seed int64) {
	g.Seed(seed)
	_ = g.Random(g.density)
}

// Step advances the simulation by one generation.
func (g *Grid) Step() { g.Next() }

func init() {
	core.Register("life", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
