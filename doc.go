// Package mercury implements the client-side result cache of the Mercury
// workspace client: every fetched resource lives in a keyed Result Cell that
// moves through pending, fulfilled, rejected and invalidated states by pure
// reducers applied by a single Store.
//
// Components:
//   - Cell[T] / Cells[T]: the cached state of one fetch, and a map of them by Key.
//   - Reducer factory: NewKeyedReducer / NewCellReducer build reducers for one Kind.
//   - ShouldUpdate: staleness predicate (never re-triggers a pending cell).
//   - Store[S]: single writer; Run is the promise middleware emitting
//     Pending then Fulfilled or Rejected.
//   - DispatchIfNeeded: runs a fetch only when the selected cell is stale.
//
// Domain slices and their invalidation overlays live in the files,
// collections, metadata, permissions and workspace packages; state.AppState
// combines them and the actions package exposes fetch-if-needed and mutation
// entry points. The mirror package persists selected slices through the
// provider, codec and genstore packages so a restarted client starts warm.
//
// Fetch-if-needed pattern:
//
//	res, err := mercury.DispatchIfNeeded(ctx, store,
//	    func() mercury.PromiseAction { return listAction(path) },
//	    func(s state.AppState) *mercury.Cell[[]files.Entry] { return s.Listings.Get(mercury.PathKey(path)) })
package mercury
