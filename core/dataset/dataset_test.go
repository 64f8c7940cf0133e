package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	ds := Uniform(100, 0, 10, 42)
	require.Len(t, ds, 100)
	for _, p := range ds {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.Less(t, p.X, 10.0)
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.Less(t, p.Y, 10.0)
	}
	assert.Equal(t, ds, Uniform(100, 0, 10, 42), "same seed, same set")
	assert.NotEqual(t, ds, Uniform(100, 0, 10, 43))
	assert.Empty(t, Uniform(-1, 0, 1, 0))
}

func TestSource(t *testing.T) {
	seeds := []int64{7, 8}
	src := NewSource(SourceConfig{
		Size: 10, Min: 0, Max: 10, Seed: 42,
		SeedFunc: func() int64 {
			s := seeds[0]
			seeds = seeds[1:]
			return s
		},
	})

	first := src.Current()
	assert.Equal(t, Uniform(10, 0, 10, 42), first)
	assert.Equal(t, first, src.Current(), "current is stable")

	// Mutating the copy doesn't leak.
	first[0].X = -1
	assert.NotEqual(t, first, src.Current())

	next := src.Regenerate()
	assert.Equal(t, Uniform(10, 0, 10, 7), next)
	assert.Equal(t, next, src.Current())
	assert.Equal(t, Uniform(10, 0, 10, 8), src.Regenerate())
}

func TestReadCSV(t *testing.T) {
	in := "x,y,label\n1,2,a\n 3.5 ,-4,b\n"
	ds, err := ReadCSV(strings.NewReader(in), CSVOptions{XColumn: 0, YColumn: 1, Header: true})
	require.NoError(t, err)
	assert.Equal(t, DataSet{{X: 1, Y: 2}, {X: 3.5, Y: -4}}, ds)

	// Swapped columns, semicolon separated.
	ds, err = ReadCSV(strings.NewReader("1;2\n"), CSVOptions{XColumn: 1, YColumn: 0, Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, DataSet{{X: 2, Y: 1}}, ds)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("x,y\n"), CSVOptions{YColumn: 1, Header: true})
	assert.ErrorIs(t, err, ErrNoPoints)

	_, err = ReadCSV(strings.NewReader("1\n"), CSVOptions{YColumn: 1})
	assert.ErrorContains(t, err, "line 1")

	_, err = ReadCSV(strings.NewReader("1,2\n1,abc\n"), CSVOptions{YColumn: 1})
	assert.ErrorContains(t, err, "line 2: y")

	_, err = ReadCSV(strings.NewReader("NaN,2\n"), CSVOptions{YColumn: 1})
	assert.ErrorContains(t, err, "not finite")
}
