package life

import (
	"bytes"
	"io"
	"math/rand/v2"

	"lifegrid/pkg/core"
)

const (
	// MaxRows is the largest supported row count for a square grid.
	MaxRows = 64
	// MaxCols is the largest supported column count for a square grid.
	MaxCols = 64
	// MaxCells is the fixed storage capacity of a grid.
	MaxCells = MaxRows * MaxCols

	// DefaultRows is the row count of a freshly constructed grid.
	DefaultRows = 16
	// DefaultCols is the column count of a freshly constructed grid.
	DefaultCols = 16
	// DefaultDensity is the fill probability used by Reset.
	DefaultDensity = 0.5
)

// Grid is a bounded Conway's Game of Life board without edge wrapping.
//
// Cell storage is two fixed arrays sized to MaxCells; resizing only changes
// the logical dimensions. Cells are addressed row-major.
type Grid struct {
	rows, cols uint16
	alive      int
	density    float64
	states     [MaxCells]uint8
	counts     [MaxCells]uint8
	rng        *rand.Rand
}

// New returns an empty DefaultRows x DefaultCols grid.
func New() *Grid {
	return &Grid{
		rows:    DefaultRows,
		cols:    DefaultCols,
		density: DefaultDensity,
		rng:     core.NewRNG(0).Source(),
	}
}

// Rows returns the number of rows.
func (g *Grid) Rows() uint16 { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() uint16 { return g.cols }

// NumCells returns rows*cols.
func (g *Grid) NumCells() int { return int(g.rows) * int(g.cols) }

// NumAlive returns the number of live cells.
func (g *Grid) NumAlive() int { return g.alive }

func (g *Grid) idx(row, col uint16) int { return int(row)*int(g.cols) + int(col) }

func (g *Grid) inRange(row, col uint16) bool { return row < g.rows && col < g.cols }

// At reports whether the cell is alive. Out-of-range cells read as dead.
func (g *Grid) At(row, col uint16) bool {
	if !g.inRange(row, col) {
		return false
	}
	return g.states[g.idx(row, col)] != 0
}

// CountAt returns the neighbour count computed by the most recent count pass.
func (g *Grid) CountAt(row, col uint16) uint8 {
	if !g.inRange(row, col) {
		return 0
	}
	return g.counts[g.idx(row, col)]
}

// Cells exposes the current states as a flat row-major slice. The slice
// aliases grid storage and is invalidated by Set.
func (g *Grid) Cells() []uint8 { return g.states[:g.NumCells()] }

// Set resizes the grid and clears every cell. Both dimensions zero is
// accepted; exactly one zero dimension is not.
func (g *Grid) Set(rows, cols uint16) error {
	if int(rows)*int(cols) > MaxCells {
		return ErrCapacityExceeded
	}
	if (rows == 0) != (cols == 0) {
		return ErrZeroDimension
	}
	g.rows, g.cols = rows, cols
	g.states = [MaxCells]uint8{}
	g.counts = [MaxCells]uint8{}
	g.alive = 0
	return nil
}

// Load replaces the contents of the current grid with row-major values.
func (g *Grid) Load(cells ...bool) error {
	if len(cells) != g.NumCells() {
		return ErrShapeMismatch
	}
	g.alive = 0
	for i, v := range cells {
		g.states[i] = b2u(v)
		g.alive += int(g.states[i])
	}
	return nil
}

// SetAt sets a single cell.
func (g *Grid) SetAt(row, col uint16, v bool) error {
	if !g.inRange(row, col) {
		return ErrOutOfRange
	}
	g.put(g.idx(row, col), v)
	return nil
}

// FlipAt toggles a single cell.
func (g *Grid) FlipAt(row, col uint16) error {
	if !g.inRange(row, col) {
		return ErrOutOfRange
	}
	i := g.idx(row, col)
	g.put(i, g.states[i] == 0)
	return nil
}

func (g *Grid) put(i int, v bool) {
	nv := b2u(v)
	if g.states[i] == nv {
		return
	}
	g.states[i] = nv
	if v {
		g.alive++
	} else {
		g.alive--
	}
}

// Clear kills every cell.
func (g *Grid) Clear() {
	n := g.NumCells()
	clear(g.states[:n])
	clear(g.counts[:n])
	g.alive = 0
}

// Seed reseeds the random source used by Random.
func (g *Grid) Seed(seed int64) {
	g.rng = core.NewRNG(seed).Source()
}

// Random makes every cell alive with the given probability.
func (g *Grid) Random(density float64) error {
	n := g.NumCells()
	if n == 0 {
		return ErrEmptyGrid
	}
	core.FillDensity(g.rng, g.states[:n], density)
	g.alive = 0
	for _, s := range g.states[:n] {
		g.alive += int(s)
	}
	return nil
}

// CountNeighbors recomputes every cell's live Moore-neighbour count.
// Neighbours beyond the grid edge are not counted.
func (g *Grid) CountNeighbors() {
	rows, cols := int(g.rows), int(g.cols)
	clear(g.counts[:rows*cols])
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.states[r*cols+c] == 0 {
				continue
			}
			for dr := -1; dr <= 1; dr++ {
				nr := r + dr
				if nr < 0 || nr >= rows {
					continue
				}
				for dc := -1; dc <= 1; dc++ {
					nc := c + dc
					if (dr == 0 && dc == 0) || nc < 0 || nc >= cols {
						continue
					}
					g.counts[nr*cols+nc]++
				}
			}
		}
	}
}

// Next advances the grid by one generation using the B3/S23 rule.
func (g *Grid) Next() {
	g.CountNeighbors()
	n := g.NumCells()
	g.alive = 0
	for i := 0; i < n; i++ {
		if Survives(g.states[i] != 0, g.counts[i]) {
			g.states[i] = 1
			g.alive++
			continue
		}
		g.states[i] = 0
	}
}

// Survives reports whether a cell is alive in the next generation.
func Survives(alive bool, neighbors uint8) bool {
	return neighbors == 3 || (alive && neighbors == 2)
}

// WriteTo renders the grid as rows of 0/1 characters, one row per line.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.Grow(g.NumCells() + int(g.rows))
	for r := uint16(0); r < g.rows; r++ {
		for c := uint16(0); c < g.cols; c++ {
			buf.WriteByte('0' + g.states[g.idx(r, c)])
		}
		buf.WriteByte('\n')
	}
	return buf.WriteTo(w)
}

func (g *Grid) String() string {
	var sb bytes.Buffer
	_, _ = g.WriteTo(&sb)
	return sb.String()
}

func b2u(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
