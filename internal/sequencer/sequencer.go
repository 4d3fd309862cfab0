// Package sequencer drives a life grid from a fixed-rate clock and emits the
// flattened board after every generation.
package sequencer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"lifegrid/internal/core"
	simcore "lifegrid/pkg/core"
	"lifegrid/pkg/sims/life"
)

// Config controls sequencer construction and pacing.
type Config struct {
	Rows    int
	Cols    int
	Seed    int64
	Density float64
	// TPS is the tick rate used by Run. Zero runs unpaced.
	TPS int
	// Steps bounds the number of ticks emitted by Run. Zero is unbounded.
	Steps int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Rows:  life.DefaultRows,
		Cols:  life.DefaultCols,
		TPS:   10,
		Steps: 0,
	}
}

// Clamp limits each dimension to 1..64. When the product still exceeds the
// grid capacity, columns are reduced to fit.
func (c Config) Clamp() Config {
	c.Rows = clampInt(c.Rows, 1, life.MaxRows)
	c.Cols = clampInt(c.Cols, 1, life.MaxCols)
	if c.Rows*c.Cols > life.MaxCells {
		c.Cols = life.MaxCells / c.Rows
	}
	if c.Density < 0 {
		c.Density = 0
	}
	if c.Density > 1 {
		c.Density = 1
	}
	if c.TPS < 0 {
		c.TPS = 0
	}
	if c.Steps < 0 {
		c.Steps = 0
	}
	return c
}

// params renders the grid-related settings as registry parameters.
func (c Config) params() map[string]string {
	return map[string]string{
		"rows":    strconv.Itoa(c.Rows),
		"cols":    strconv.Itoa(c.Cols),
		"seed":    strconv.FormatInt(c.Seed, 10),
		"density": strconv.FormatFloat(c.Density, 'g', -1, 64),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Frame is one emitted snapshot of the grid.
type Frame struct {
	Gen   int     `json:"gen"`
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
	Alive int     `json:"alive"`
	Cells []uint8 `json:"cells"`
}

// Sink receives frames. Returning an error stops Run.
type Sink interface {
	Emit(ctx context.Context, f Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, f Frame) error

// Emit calls fn.
func (fn SinkFunc) Emit(ctx context.Context, f Frame) error { return fn(ctx, f) }

// Option customises a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) { s.log = l }
}

// Sequencer owns a grid, applies commands to it and steps it once per tick.
type Sequencer struct {
	cfg  Config
	sim  simcore.Sim
	grid *life.Grid
	gen  int
	out  []Frame
	log  *slog.Logger
}

// New builds a sequencer around a "life" sim from the registry, sized from
// the clamped config. A non-zero density fills the grid randomly.
func New(cfg Config, opts ...Option) (*Sequencer, error) {
	cfg = cfg.Clamp()
	sim, err := simcore.Build("life", cfg.params())
	if err != nil {
		return nil, fmt.Errorf("sequencer: %w", err)
	}
	grid, ok := sim.(*life.Grid)
	if !ok {
		return nil, fmt.Errorf("sequencer: sim %q is %T, not a life grid", sim.Name(), sim)
	}
	if size := sim.Size(); size.H != cfg.Rows || size.W != cfg.Cols {
		return nil, fmt.Errorf("sequencer: size %dx%d: %w", cfg.Rows, cfg.Cols, life.ErrCapacityExceeded)
	}
	s := &Sequencer{cfg: cfg, sim: sim, grid: grid, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Density > 0 {
		sim.Reset(cfg.Seed)
	}
	return s, nil
}

// Config returns the effective, clamped configuration.
func (s *Sequencer) Config() Config { return s.cfg }

// Grid exposes the underlying grid.
func (s *Sequencer) Grid() *life.Grid { return s.grid }

// Generation returns the number of generations stepped so far.
func (s *Sequencer) Generation() int { return s.gen }

// Frame snapshots the current grid. Cells are copied.
func (s *Sequencer) Frame() Frame {
	return Frame{
		Gen:   s.gen,
		Rows:  s.sim.Size().H,
		Cols:  s.sim.Size().W,
		Alive: s.grid.NumAlive(),
		Cells: append([]uint8(nil), s.sim.Cells()...),
	}
}

// Pending returns and clears frames queued by "bang" and "next" commands.
func (s *Sequencer) Pending() []Frame {
	out := s.out
	s.out = nil
	return out
}

// Tick advances one generation and returns the resulting frame.
func (s *Sequencer) Tick() Frame {
	s.sim.Step()
	s.gen++
	s.log.Debug("tick", "gen", s.gen, "alive", s.grid.NumAlive())
	return s.Frame()
}

// Flush hands every pending frame to sink in the order it was queued.
func (s *Sequencer) Flush(ctx context.Context, sink Sink) error {
	for _, f := range s.Pending() {
		if err := sink.Emit(ctx, f); err != nil {
			return fmt.Errorf("sequencer: emit generation %d: %w", f.Gen, err)
		}
	}
	return nil
}

// Run ticks at the configured rate and hands every frame to sink, followed
// by any frames queued while emitting it. Frames queued before Run are
// flushed first. It stops after cfg.Steps ticks, when ctx is done, or when
// sink fails. Cancellation is not reported as an error.
func (s *Sequencer) Run(ctx context.Context, sink Sink) error {
	var clock *core.FixedStep
	if s.cfg.TPS > 0 {
		clock = core.NewFixedStep(s.cfg.TPS)
	}
	if err := s.Flush(ctx, sink); err != nil {
		return err
	}
	s.log.Info("sequencer starting", "sim", s.sim.Name(),
		"rows", s.cfg.Rows, "cols", s.cfg.Cols, "tps", s.cfg.TPS, "steps", s.cfg.Steps)

	for n := 0; s.cfg.Steps == 0 || n < s.cfg.Steps; n++ {
		if clock != nil {
			if err := clock.Wait(ctx); err != nil {
				return s.stopped()
			}
		} else if ctx.Err() != nil {
			return s.stopped()
		}
		if err := sink.Emit(ctx, s.Tick()); err != nil {
			return fmt.Errorf("sequencer: emit generation %d: %w", s.gen, err)
		}
		if err := s.Flush(ctx, sink); err != nil {
			return err
		}
	}
	s.log.Info("sequencer finished", "gen", s.gen, "alive", s.grid.NumAlive())
	return nil
}

func (s *Sequencer) stopped() error {
	s.log.Info("sequencer stopping: context done", "gen", s.gen)
	return nil
}
