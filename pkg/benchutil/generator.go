// Package benchutil generates reproducible tables for benchmarks and
// randomized tests.
package benchutil

import (
	"fmt"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/eunmann/ccf/pkg/ccf"
)

// BenchmarkSeed is the default seed for reproducible benchmark data.
const BenchmarkSeed = 42

// Shape is a table size used by benchmarks.
type Shape struct {
	Columns int
	Rows    int
}

func (s Shape) String() string {
	return fmt.Sprintf("cols=%d/rows=%d", s.Columns, s.Rows)
}

// BenchmarkShapes are the standard sizes for quick runs: narrow and tall,
// wide and short, and in between.
var BenchmarkShapes = []Shape{
	{Columns: 2, Rows: 100_000},
	{Columns: 16, Rows: 10_000},
	{Columns: 1_000, Rows: 100},
}

// ScalingShapes are larger sizes, run only with CCF_LONG_BENCH=1.
var ScalingShapes = []Shape{
	{Columns: 8, Rows: 1_000_000},
	{Columns: 64, Rows: 1_000_000},
	{Columns: ccf.MaxColumns, Rows: 16},
}

// SkipIfNoLongBench skips the benchmark if CCF_LONG_BENCH is not set.
func SkipIfNoLongBench(b *testing.B) {
	if os.Getenv("CCF_LONG_BENCH") == "" {
		b.Skip("set CCF_LONG_BENCH=1 to run scaling benchmark")
	}
}

// GeneratorConfig controls generated tables.
type GeneratorConfig struct {
	Shape Shape
	Seed  uint64

	// MaxNameLen bounds generated column names; names are at least 1 byte.
	// Zero means ccf.MaxNameLen.
	MaxNameLen int

	// DuplicateNames makes roughly one column in eight reuse an earlier name.
	DuplicateNames bool
}

// Generator produces tables with random names and values.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from cfg.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.MaxNameLen <= 0 || cfg.MaxNameLen > ccf.MaxNameLen {
		cfg.MaxNameLen = ccf.MaxNameLen
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// Table generates a table that passes ccf.Table.Validate.
func (g *Generator) Table() *ccf.Table {
	t := &ccf.Table{Columns: make([]ccf.Column, g.cfg.Shape.Columns)}
	for i := range t.Columns {
		name := g.name(i)
		if g.cfg.DuplicateNames && i > 0 && g.rng.IntN(8) == 0 {
			name = t.Columns[g.rng.IntN(i)].Name
		}
		t.Columns[i] = ccf.Column{
			Name:   name,
			Type:   ccf.TypeInt32,
			Values: g.values(g.cfg.Shape.Rows),
		}
	}
	return t
}

// name returns a random ASCII name, prefixed with the column index so
// names are unique unless duplicates are requested.
func (g *Generator) name(i int) string {
	prefix := fmt.Sprintf("c%d_", i)
	n := g.rng.IntN(g.cfg.MaxNameLen) + 1
	if n <= len(prefix) {
		return prefix[:min(len(prefix), g.cfg.MaxNameLen)]
	}
	buf := make([]byte, n)
	copy(buf, prefix)
	for j := len(prefix); j < n; j++ {
		buf[j] = byte('a' + g.rng.IntN(26))
	}
	return string(buf)
}

func (g *Generator) values(rows int) []int32 {
	values := make([]int32, rows)
	for i := range values {
		values[i] = int32(g.rng.Uint32())
	}
	return values
}

// Names returns n distinct column names.
func Names(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("column_%05d", i)
	}
	return names
}
