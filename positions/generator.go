// Package positions simulates daily trading positions for the configured
// currency pairs.
//
// Each pair's size follows a bounded random walk around its base size and
// its direction is drawn from fixed FLAT / LONG / SHORT probabilities.
package positions

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rustyeddy/fxrisk/config"
)

type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
	Flat  Direction = "FLAT"
)

// Directions in reporting order.
var Directions = []Direction{Long, Short, Flat}

var ErrInvalidParams = errors.New("invalid position parameters")

// Params drive the random walk. ShortProbability is implied: a draw that
// is neither FLAT nor LONG is SHORT.
type Params struct {
	MaxDeviation    float64
	LongProbability float64
	FlatProbability float64
	Desk            string
}

// ParamsFrom reads the position_generation section of cfg.
func ParamsFrom(cfg *config.Pipeline) Params {
	return Params{
		MaxDeviation:    cfg.MaxDeviation(),
		LongProbability: cfg.LongProbability(),
		FlatProbability: cfg.FlatProbability(),
		Desk:            cfg.Desk(),
	}
}

func (p Params) validate() error {
	if p.MaxDeviation < 0 || math.IsNaN(p.MaxDeviation) {
		return fmt.Errorf("%w: max deviation %v", ErrInvalidParams, p.MaxDeviation)
	}
	for name, v := range map[string]float64{"long": p.LongProbability, "flat": p.FlatProbability} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s probability %v outside [0,1]", ErrInvalidParams, name, v)
		}
	}
	return nil
}

// Generator draws positions from Params. It is not safe for concurrent use.
type Generator struct {
	params Params
	rng    *rand.Rand
	now    func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand fixes the random source, for reproducible runs.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithClock sets the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator validates p and returns a Generator seeded from crypto/rand
// unless WithRand is given.
func NewGenerator(p Params, opts ...Option) (*Generator, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	g := &Generator{params: p, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(seed()))
	}
	return g, nil
}

func seed() int64 {
	var s int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &s)
	if s == 0 {
		s = time.Now().UnixNano()
	}
	return s
}

// Generate returns one record per base position, in input order.
func (g *Generator) Generate(date time.Time, bases []config.BasePosition) []Record {
	generatedAt := g.now()
	out := make([]Record, 0, len(bases))

	for _, b := range bases {
		size, dir := g.draw(b.Size)
		out = append(out, Record{
			Date:         date,
			CurrencyPair: b.Name,
			PositionSize: size,
			Direction:    dir,
			Desk:         g.params.Desk,
			GeneratedAt:  generatedAt,
		})
	}
	return out
}

func (g *Generator) draw(base float64) (float64, Direction) {
	deviation := (g.rng.Float64()*2 - 1) * g.params.MaxDeviation
	size := base * (1 + deviation)

	r := g.rng.Float64()
	switch {
	case r < g.params.FlatProbability:
		return 0, Flat
	case r < g.params.FlatProbability+g.params.LongProbability:
		return g.round(base, size), Long
	default:
		return g.round(base, size), Short
	}
}

// round rounds size to cents without leaving the random walk band.
func (g *Generator) round(base, size float64) float64 {
	lo := base * (1 - g.params.MaxDeviation)
	hi := base * (1 + g.params.MaxDeviation)
	if lo > hi {
		lo, hi = hi, lo
	}

	v := math.Round(size*100) / 100
	if v > hi {
		v = math.Floor(hi*100) / 100
	}
	if v < lo {
		v = math.Ceil(lo*100) / 100
	}
	return v
}
