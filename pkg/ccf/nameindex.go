package ccf

import (
	"fmt"
	"hash/fnv"

	"github.com/relab/bbhash"
)

// NameIndex maps column names to column indexes through a minimal perfect
// hash over the name hashes. When a name occurs more than once the first
// column wins.
type NameIndex struct {
	mph      *bbhash.BBHash2
	slots    []int    // MPHF position -> column index
	names    []string // Column names in table order
	overflow map[string]int
}

// NewNameIndex builds an index over names.
func NewNameIndex(names []string) (*NameIndex, error) {
	idx := &NameIndex{names: names}

	var keys []uint64
	var cols []int
	seen := make(map[uint64]string, len(names))
	for i, name := range names {
		h := hashName(name)
		if prev, ok := seen[h]; ok {
			if prev == name {
				continue
			}
			// Distinct names with equal hashes cannot share the MPHF.
			if idx.overflow == nil {
				idx.overflow = make(map[string]int)
			}
			if _, dup := idx.overflow[name]; !dup {
				idx.overflow[name] = i
			}
			continue
		}
		seen[h] = name
		keys = append(keys, h)
		cols = append(cols, i)
	}

	if len(keys) == 0 {
		return idx, nil
	}

	mph, err := bbhash.New(keys, bbhash.Gamma(2.0))
	if err != nil {
		return nil, fmt.Errorf("build MPHF: %w", err)
	}

	// BBHash returns 1-indexed values
	idx.slots = make([]int, len(keys))
	for i, k := range keys {
		v := mph.Find(k)
		if v == 0 {
			return nil, fmt.Errorf("MPHF lookup failed for %q", names[cols[i]])
		}
		idx.slots[v-1] = cols[i]
	}
	idx.mph = mph
	return idx, nil
}

// Lookup returns the column index for name, or ok=false if no column has
// that name.
func (x *NameIndex) Lookup(name string) (int, bool) {
	if col, ok := x.overflow[name]; ok {
		return col, true
	}
	if x.mph == nil {
		return 0, false
	}

	v := x.mph.Find(hashName(name))
	if v == 0 || v > uint64(len(x.slots)) {
		return 0, false
	}

	col := x.slots[v-1]
	if x.names[col] != name {
		return 0, false
	}
	return col, true
}

// Len returns the number of distinct names in the index.
func (x *NameIndex) Len() int {
	return len(x.slots) + len(x.overflow)
}

// hashName computes the MPHF key for a column name.
func hashName(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
