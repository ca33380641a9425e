package vfs

// Change records that the item at Route changed at Timestamp. Timestamps are
// fractional seconds on the owning filesystem's clock (see CurrentTime), not
// wall-clock time.
type Change struct {
	Timestamp float64 `json:"timestamp"`
	Route     Route   `json:"route"`
}
