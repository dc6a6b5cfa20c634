package mercury

import "context"

// Dispatcher is the part of a Store the coordinator needs.
type Dispatcher[S any] interface {
	State() S
	Run(ctx context.Context, p PromiseAction) (any, error)
}

// Result is what DispatchIfNeeded resolves with. Fetched reports whether a
// request was actually made.
type Result[T any] struct {
	Value   T
	Fetched bool
}

// DispatchIfNeeded runs the action built by create only when the cell picked
// by selector is stale (see ShouldUpdate). Otherwise it returns the cached
// data without dispatching anything; a pending cell yields a zero Value.
// It makes at most one Run per call.
func DispatchIfNeeded[S, T any](
	ctx context.Context,
	d Dispatcher[S],
	create func() PromiseAction,
	selector func(S) *Cell[T],
) (Result[T], error) {
	cell := selector(d.State())
	if !ShouldUpdate(cell) {
		return Result[T]{Value: cell.Data}, nil
	}

	p := create()
	v, err := d.Run(ctx, p)
	if err != nil {
		return Result[T]{}, err
	}
	out, ok := payload[T](v)
	if !ok {
		return Result[T]{}, &PayloadTypeError{Kind: p.Kind, Got: v}
	}
	return Result[T]{Value: out, Fetched: true}, nil
}
