package positions

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxrisk/config"
)

var testDate = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func newTestGenerator(t *testing.T, p Params) *Generator {
	t.Helper()
	fixed := time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)
	g, err := NewGenerator(p, WithRand(rand.New(rand.NewSource(42))), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	return g
}

func TestGenerateAlwaysLong(t *testing.T) {
	g := newTestGenerator(t, Params{MaxDeviation: 0.2, LongProbability: 1, FlatProbability: 0, Desk: "D"})
	bases := []config.BasePosition{{Name: "EUR/USD", Size: 1000000}}

	for i := 0; i < 1000; i++ {
		recs := g.Generate(testDate, bases)
		require.Len(t, recs, 1)
		require.Equal(t, Long, recs[0].Direction)
	}
}

func TestGenerateAlwaysFlat(t *testing.T) {
	g := newTestGenerator(t, Params{MaxDeviation: 0.2, LongProbability: 0, FlatProbability: 1})
	bases := []config.BasePosition{{Name: "EUR/USD", Size: 1000000}, {Name: "GBP/USD", Size: 5}}

	for i := 0; i < 200; i++ {
		for _, r := range g.Generate(testDate, bases) {
			require.Equal(t, Flat, r.Direction)
			require.Zero(t, r.PositionSize)
		}
	}
}

func TestGenerateSizeWithinBand(t *testing.T) {
	tests := []struct {
		name string
		base float64
		dev  float64
	}{
		{"large base", 15000000, 0.2},
		{"small base", 1.234, 0.5},
		{"no deviation", 8000000, 0},
		{"full deviation", 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, Params{MaxDeviation: tt.dev, LongProbability: 0.5, FlatProbability: 0.1})
			lo := tt.base * (1 - tt.dev)
			hi := tt.base * (1 + tt.dev)

			for i := 0; i < 1000; i++ {
				r := g.Generate(testDate, []config.BasePosition{{Name: "X", Size: tt.base}})[0]
				if r.Direction == Flat {
					assert.Zero(t, r.PositionSize)
					continue
				}
				assert.GreaterOrEqual(t, r.PositionSize, lo-1e-9)
				assert.LessOrEqual(t, r.PositionSize, hi+1e-9)
				assert.InDelta(t, r.PositionSize, math.Round(r.PositionSize*100)/100, 1e-6)
			}
		})
	}
}

func TestGenerateOneRecordPerBaseInOrder(t *testing.T) {
	g := newTestGenerator(t, Params{MaxDeviation: 0.2, LongProbability: 0.7, FlatProbability: 0.05, Desk: "FX_TRADING"})
	bases := []config.BasePosition{
		{Name: "USD/JPY", Size: 10000000},
		{Name: "EUR/USD", Size: 15000000},
		{Name: "AUD/USD", Size: 5000000},
	}

	recs := g.Generate(testDate, bases)
	require.Len(t, recs, 3)
	for i, r := range recs {
		assert.Equal(t, bases[i].Name, r.CurrencyPair)
		assert.Equal(t, "FX_TRADING", r.Desk)
		assert.Equal(t, testDate, r.Date)
		assert.Equal(t, time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC), r.GeneratedAt)
	}

	assert.Empty(t, g.Generate(testDate, nil))
}

func TestGenerateDirectionMix(t *testing.T) {
	g := newTestGenerator(t, Params{MaxDeviation: 0.2, LongProbability: 0.7, FlatProbability: 0.05})
	counts := map[Direction]int{}
	bases := []config.BasePosition{{Name: "EUR/USD", Size: 1}}
	for i := 0; i < 10000; i++ {
		counts[g.Generate(testDate, bases)[0].Direction]++
	}

	assert.InDelta(t, 500, counts[Flat], 150)
	assert.InDelta(t, 7000, counts[Long], 300)
	assert.InDelta(t, 2500, counts[Short], 300)
}

func TestGenerateReproducibleWithSeed(t *testing.T) {
	p := Params{MaxDeviation: 0.2, LongProbability: 0.7, FlatProbability: 0.05}
	bases := []config.BasePosition{{Name: "EUR/USD", Size: 15000000}, {Name: "GBP/USD", Size: 8000000}}

	a := newTestGenerator(t, p).Generate(testDate, bases)
	b := newTestGenerator(t, p).Generate(testDate, bases)
	assert.Equal(t, a, b)
}

func TestNewGeneratorRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"negative deviation", Params{MaxDeviation: -0.1, LongProbability: 0.5}},
		{"long above one", Params{MaxDeviation: 0.2, LongProbability: 1.2}},
		{"negative flat", Params{MaxDeviation: 0.2, LongProbability: 0.5, FlatProbability: -0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.p)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestParamsFrom(t *testing.T) {
	cfg, err := config.Load("prod", "../config")
	require.NoError(t, err)

	assert.Equal(t, Params{
		MaxDeviation:    0.20,
		LongProbability: 0.70,
		FlatProbability: 0.05,
		Desk:            "FX_TRADING",
	}, ParamsFrom(cfg))
}
