package life

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiguresGolden(t *testing.T) {
	gd := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, f := range Figures() {
		t.Run(f.Name, func(t *testing.T) {
			g := New()
			require.NoError(t, g.Set(f.H+2, f.W+2))
			require.NoError(t, g.AddFigure(1, 1, f))
			gd.Assert(t, "figure_"+f.Name, []byte(g.String()))
		})
	}
}

func TestNamedStampsMatchFigures(t *testing.T) {
	stamps := map[string]func(*Grid, uint16, uint16){
		"block":      (*Grid).AddBlock,
		"hive":       (*Grid).AddHive,
		"vhive":      (*Grid).AddVHive,
		"glider":     (*Grid).AddGlider,
		"rpentomino": (*Grid).AddRPentamino,
		"blinker":    (*Grid).AddBlinker,
		"octagon2":   (*Grid).AddOctagon2,
	}
	require.Len(t, Figures(), len(stamps))

	for name, stamp := range stamps {
		f, err := Lookup(name)
		require.NoError(t, err)

		a, b := New(), New()
		stamp(a, 2, 3)
		require.NoError(t, b.AddFigure(2, 3, f))
		assert.Equal(t, b.String(), a.String(), name)

		bits := 0
		for _, v := range f.Bits {
			if v {
				bits++
			}
		}
		assert.Equal(t, bits, a.NumAlive(), name)
	}
}

func TestLookupFoldsNames(t *testing.T) {
	for _, name := range []string{"glider", "GLIDER", "Glider", "R-Pentomino", "r_pentomino", "Octagon2"} {
		_, err := Lookup(name)
		assert.NoError(t, err, name)
	}
	_, err := Lookup("gosper")
	assert.ErrorIs(t, err, ErrUnknownFigure)
}

func TestLookupReturnsCopy(t *testing.T) {
	f, err := Lookup("block")
	require.NoError(t, err)
	f.Bits[0] = false

	again, err := Lookup("block")
	require.NoError(t, err)
	assert.True(t, again.Bits[0])
}

func TestStampOrsIntoExistingCells(t *testing.T) {
	g := New()
	require.NoError(t, g.Set(3, 4))
	require.NoError(t, g.SetAt(0, 0, true))
	require.NoError(t, g.SetAt(1, 1, true))

	g.AddHive(0, 0)
	assert.True(t, g.At(0, 0), "zero bits must not clear live cells")
	assert.True(t, g.At(1, 1))
	assert.Equal(t, "1110\n1101\n0110\n", g.String())
	assert.Equal(t, 8, g.NumAlive())
}

func TestStampClipsAtEdges(t *testing.T) {
	g := New()
	require.NoError(t, g.Set(4, 4))
	g.AddBlock(3, 3)
	assert.Equal(t, 1, g.NumAlive())
	assert.True(t, g.At(3, 3))

	g.Clear()
	g.AddOctagon2(0, 0)
	assert.Equal(t, "0001\n0010\n0100\n1000\n", g.String())
	assert.Equal(t, 4, g.NumAlive())

	g.Clear()
	require.NoError(t, g.Stamp(100, 100, 2, 2, true, true, true, true))
	assert.Zero(t, g.NumAlive())
}

func TestStampShapeMismatch(t *testing.T) {
	g := New()
	require.NoError(t, g.Set(4, 4))
	g.AddBlinker(0, 0)
	before := g.String()

	err := g.Stamp(0, 1, 2, 2, true, true, true)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, before, g.String())
	assert.Equal(t, 3, g.NumAlive())

	err = g.AddFigure(0, 0, Figure{Name: "bad", H: 3, W: 3, Bits: []bool{true}})
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, before, g.String())
}

func TestNewFigure(t *testing.T) {
	f := NewFigure("ragged", "1", "011")
	assert.Equal(t, uint16(2), f.H)
	assert.Equal(t, uint16(3), f.W)
	assert.Equal(t, "100\n011\n", f.String())
}
