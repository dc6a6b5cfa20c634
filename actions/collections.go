package actions

import (
	"context"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/collections"
	"github.com/fairspace/mercury/state"
)

func (a *Actions) FetchCollectionsIfNeeded(ctx context.Context) mercury.Result[[]collections.Collection] {
	p := mercury.PromiseAction{Kind: mercury.FetchCollections, Do: func(ctx context.Context) (any, error) {
		if a.clients.Collections == nil {
			return nil, ErrNoClient
		}
		return a.clients.Collections.List(ctx)
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[[]collections.Collection] { return s.Collections })
	return swallow(a, p, r, err)
}

func (a *Actions) InvalidateCollections(ctx context.Context) {
	a.invalidate(ctx, mercury.FetchCollections, "")
}

func (a *Actions) AddCollection(ctx context.Context, c collections.Collection) error {
	return a.changeCollection(ctx, mercury.AddCollection, c, "")
}

// UpdateCollection stores c. oldLocation is the previous location when the
// update moves the collection, empty otherwise.
func (a *Actions) UpdateCollection(ctx context.Context, c collections.Collection, oldLocation string) error {
	if oldLocation == c.Location {
		oldLocation = ""
	}
	return a.changeCollection(ctx, mercury.UpdateCollection, c, oldLocation)
}

func (a *Actions) DeleteCollection(ctx context.Context, c collections.Collection) error {
	return a.changeCollection(ctx, mercury.DeleteCollection, c, "")
}

func (a *Actions) changeCollection(ctx context.Context, kind mercury.Kind, c collections.Collection, oldLocation string) error {
	m := collections.ChangeMeta{IRI: c.IRI, Location: c.Location, OldLocation: oldLocation}
	_, err := a.mutate(ctx, kind, mercury.SubjectKey(c.IRI), m, func(ctx context.Context) (any, error) {
		cl := a.clients.Collections
		if cl == nil {
			return nil, ErrNoClient
		}
		switch kind {
		case mercury.AddCollection:
			return nil, cl.Add(ctx, c)
		case mercury.UpdateCollection:
			return nil, cl.Update(ctx, c)
		default:
			return nil, cl.Delete(ctx, c)
		}
	})
	return err
}
