package mercury

// ShouldUpdate reports whether a fresh fetch should be dispatched for c.
// A pending cell is never re-triggered, even when it is also invalidated,
// so at most one fetch per key is in flight.
func ShouldUpdate[T any](c *Cell[T]) bool {
	if c == nil {
		return true
	}
	if c.Pending {
		return false
	}
	return c.Invalidated
}

// MarkInvalidated returns a copy of c flagged as invalidated. A nil or
// already invalidated cell is returned as is.
func MarkInvalidated[T any](c *Cell[T]) *Cell[T] {
	if c == nil || c.Invalidated {
		return c
	}
	next := *c
	next.Invalidated = true
	return &next
}
