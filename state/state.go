// Package state assembles the domain slices into the application state held
// by a single mercury.Store.
package state

import (
	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/collections"
	"github.com/fairspace/mercury/files"
	"github.com/fairspace/mercury/metadata"
	"github.com/fairspace/mercury/permissions"
	"github.com/fairspace/mercury/workspace"
)

// AppState is the whole client cache. The zero value is the initial state.
type AppState struct {
	Collections *mercury.Cell[[]collections.Collection]
	Listings    files.Listings
	Infos       files.Infos
	Metadata    metadata.State
	Permissions permissions.ByResource
	Workspace   workspace.State
}

// Reduce is the root reducer. Slices an action does not concern keep their
// identity.
func Reduce(s AppState, a mercury.Action) AppState {
	s.Collections = collections.Reduce(s.Collections, a)
	s.Listings = files.ReduceListings(s.Listings, a)
	s.Infos = files.ReduceInfos(s.Infos, a)
	s.Metadata = metadata.Reduce(s.Metadata, a)
	s.Permissions = permissions.Reduce(s.Permissions, a)
	s.Workspace = workspace.Reduce(s.Workspace, a)
	return s
}

type Store = mercury.Store[AppState]

func NewStore(opts mercury.Options) *Store {
	return mercury.NewStore(AppState{}, Reduce, opts)
}
