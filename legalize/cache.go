package legalize

import (
	"strconv"

	"github.com/gogpu/tensorir/ir"
)

// alignCache dedupes synthesized alignment chains within one pass.
// Two requests are the same chain when they start from the same value
// and reach the same target shape through the same axis map, so the
// key is a normalized string of exactly those three parts.
type alignCache struct {
	chains map[string]ir.ValueID
}

func newAlignCache() alignCache {
	return alignCache{chains: make(map[string]ir.ValueID, 8)}
}

func (c *alignCache) lookup(key string) (ir.ValueID, bool) {
	id, ok := c.chains[key]
	return id, ok
}

func (c *alignCache) insert(key string, id ir.ValueID) {
	c.chains[key] = id
}

// alignKeyOf builds the normalized cache key. Dynamic extents encode
// as "?" so two chains to structurally identical dynamic targets
// share one entry.
func alignKeyOf(src ir.ValueID, axes ir.BroadcastDims, target ir.Shape) string {
	b := make([]byte, 0, 64)
	b = strconv.AppendUint(b, uint64(src), 10)
	b = append(b, '|')
	for i, axis := range axes {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, int64(axis), 10)
	}
	b = append(b, '|')
	for i, d := range target.Dims {
		if i > 0 {
			b = append(b, 'x')
		}
		if d.IsDynamic() {
			b = append(b, '?')
		} else {
			b = strconv.AppendInt(b, int64(d), 10)
		}
	}
	return string(b)
}
