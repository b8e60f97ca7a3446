// Package syncer is the synchronization engine: it reconciles entity updates
// from the poll and push channels into the local collections and drives the
// incremental render layer.
package syncer

// Cursor is the watermark below which a collection is known to be fully
// synchronized with the server.
type Cursor struct {
	value int64
}

// Value returns the current watermark.
func (c *Cursor) Value() int64 { return c.value }

// Advance raises the watermark to ts. Stale or equal values are ignored, so
// the watermark is monotonically non-decreasing.
func (c *Cursor) Advance(ts int64) {
	if ts > c.value {
		c.value = ts
	}
}
