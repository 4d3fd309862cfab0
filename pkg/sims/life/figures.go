package life

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Figure is a small row-major bit mask stamped onto a grid.
type Figure struct {
	Name string
	H, W uint16
	Bits []bool
}

// NewFigure builds a figure from rows of '0'/'1' characters. Any other
// character than '1' is treated as a dead cell.
func NewFigure(name string, rows ...string) Figure {
	f := Figure{Name: name, H: uint16(len(rows))}
	for _, r := range rows {
		if uint16(len(r)) > f.W {
			f.W = uint16(len(r))
		}
	}
	f.Bits = make([]bool, int(f.H)*int(f.W))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			f.Bits[y*int(f.W)+x] = r[x] == '1'
		}
	}
	return f
}

// String renders the figure like Grid.String.
func (f Figure) String() string {
	var sb strings.Builder
	for y := 0; y < int(f.H); y++ {
		for x := 0; x < int(f.W); x++ {
			sb.WriteByte('0' + b2u(f.Bits[y*int(f.W)+x]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

var (
	block = NewFigure("block",
		"11",
		"11")
	hive = NewFigure("hive",
		"0110",
		"1001",
		"0110")
	vhive = NewFigure("vhive",
		"010",
		"101",
		"101",
		"010")
	glider = NewFigure("glider",
		"010",
		"001",
		"111")
	rpentomino = NewFigure("rpentomino",
		"011",
		"110",
		"010")
	blinker = NewFigure("blinker",
		"1",
		"1",
		"1")
	octagon2 = NewFigure("octagon2",
		"00011000",
		"00100100",
		"01000010",
		"10000001",
		"10000001",
		"01000010",
		"00100100",
		"00011000")
)

var figures = map[string]Figure{}

func init() {
	for _, f := range []Figure{block, hive, vhive, glider, rpentomino, blinker, octagon2} {
		figures[foldName(f.Name)] = f
	}
}

var separators = strings.NewReplacer("-", "", "_", "", " ", "")

func foldName(name string) string {
	return cases.Fold().String(separators.Replace(name))
}

// Lookup returns the named figure. Matching ignores case and '-'/'_'
// separators, so "R-Pentomino" finds "rpentomino".
func Lookup(name string) (Figure, error) {
	f, ok := figures[foldName(name)]
	if !ok {
		return Figure{}, fmt.Errorf("%w: %q", ErrUnknownFigure, name)
	}
	f.Bits = slices.Clone(f.Bits)
	return f, nil
}

// Figures returns every named figure sorted by name.
func Figures() []Figure {
	out := make([]Figure, 0, len(figures))
	for _, f := range figures {
		f.Bits = slices.Clone(f.Bits)
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Stamp ORs a h x w row-major bit mask onto the grid with its top-left
// corner at (row, col). Bits falling outside the grid are dropped.
func (g *Grid) Stamp(row, col, h, w uint16, bits ...bool) error {
	if len(bits) != int(h)*int(w) {
		return ErrShapeMismatch
	}
	for y := 0; y < int(h); y++ {
		r := int(row) + y
		if r >= int(g.rows) {
			break
		}
		for x := 0; x < int(w); x++ {
			c := int(col) + x
			if c >= int(g.cols) {
				break
			}
			if bits[y*int(w)+x] {
				g.put(r*int(g.cols)+c, true)
			}
		}
	}
	return nil
}

// AddFigure stamps f with its top-left corner at (row, col).
func (g *Grid) AddFigure(row, col uint16, f Figure) error {
	return g.Stamp(row, col, f.H, f.W, f.Bits...)
}

// AddBlock stamps a 2x2 block still life.
func (g *Grid) AddBlock(row, col uint16) { _ = g.AddFigure(row, col, block) }

// AddHive stamps a horizontal beehive still life.
func (g *Grid) AddHive(row, col uint16) { _ = g.AddFigure(row, col, hive) }

// AddVHive stamps a vertical beehive still life.
func (g *Grid) AddVHive(row, col uint16) { _ = g.AddFigure(row, col, vhive) }

// AddGlider stamps a glider travelling towards increasing row and column.
func (g *Grid) AddGlider(row, col uint16) { _ = g.AddFigure(row, col, glider) }

// AddRPentamino stamps an R-pentomino.
func (g *Grid) AddRPentamino(row, col uint16) { _ = g.AddFigure(row, col, rpentomino) }

// AddBlinker stamps a vertical period-2 blinker.
func (g *Grid) AddBlinker(row, col uint16) { _ = g.AddFigure(row, col, blinker) }

// AddOctagon2 stamps the period-5 octagon 2 oscillator.
func (g *Grid) AddOctagon2(row, col uint16) { _ = g.AddFigure(row, col, octagon2) }
