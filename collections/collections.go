// Package collections caches the list of collections of the workspace.
package collections

import (
	"context"
	"time"

	"github.com/fairspace/mercury"
)

// Collection is a top-level directory with its own metadata and permissions.
type Collection struct {
	IRI         string    `json:"iri" cbor:"iri" msgpack:"iri"`
	Name        string    `json:"name" cbor:"name" msgpack:"name"`
	Description string    `json:"description" cbor:"description" msgpack:"description"`
	Location    string    `json:"location" cbor:"location" msgpack:"location"`
	Type        string    `json:"type" cbor:"type" msgpack:"type"`
	CreatedBy   string    `json:"createdBy" cbor:"createdBy" msgpack:"createdBy"`
	DateCreated time.Time `json:"dateCreated" cbor:"dateCreated" msgpack:"dateCreated"`
}

// Client is the collection REST collaborator.
type Client interface {
	List(ctx context.Context) ([]Collection, error)
	Add(ctx context.Context, c Collection) error
	Update(ctx context.Context, c Collection) error
	Delete(ctx context.Context, c Collection) error
}

// ChangeMeta accompanies Add/Update/Delete. OldLocation is set when an
// update moved the collection to another directory.
type ChangeMeta struct {
	IRI         string
	Location    string
	OldLocation string
}

// Roots returns the directories whose contents the change affects.
func (m ChangeMeta) Roots() []string {
	var out []string
	for _, l := range []string{m.Location, m.OldLocation} {
		if l != "" {
			out = append(out, "/"+l)
		}
	}
	return out
}

var base = mercury.NewCellReducer[[]Collection](mercury.FetchCollections)

// Reduce maintains the collection list; any successful add, update or
// delete invalidates it.
func Reduce(s *mercury.Cell[[]Collection], a mercury.Action) *mercury.Cell[[]Collection] {
	s = base(s, a)
	if a.Phase != mercury.PhaseFulfilled {
		return s
	}
	switch a.Kind {
	case mercury.AddCollection, mercury.UpdateCollection, mercury.DeleteCollection:
		return mercury.MarkInvalidated(s)
	}
	return s
}

// ByLocation returns the collection stored at location.
func ByLocation(cs []Collection, location string) (Collection, bool) {
	for _, c := range cs {
		if c.Location == location {
			return c, true
		}
	}
	return Collection{}, false
}
