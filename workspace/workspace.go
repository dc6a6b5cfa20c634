// Package workspace caches the current workspace, its users and the
// authorizations of the signed-in user.
package workspace

import (
	"context"
	"slices"

	"github.com/fairspace/mercury"
)

type User struct {
	ID    string   `json:"id" cbor:"id" msgpack:"id"`
	Name  string   `json:"fullName" cbor:"name" msgpack:"name"`
	Email string   `json:"email,omitempty" cbor:"email,omitempty" msgpack:"email,omitempty"`
	Roles []string `json:"roles,omitempty" cbor:"roles,omitempty" msgpack:"roles,omitempty"`
}

type Workspace struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Client interface {
	Users(ctx context.Context) ([]User, error)
	Workspace(ctx context.Context) (Workspace, error)
	Authorizations(ctx context.Context) ([]string, error)
}

// State is the workspace part of the cache. Every field is a root cell.
type State struct {
	Users          *mercury.Cell[[]User]
	Workspace      *mercury.Cell[Workspace]
	Authorizations *mercury.Cell[[]string]
}

var (
	usersBase = mercury.NewCellReducer[[]User](mercury.FetchUsers)
	wsBase    = mercury.NewCellReducer[Workspace](mercury.FetchWorkspace)
	authzBase = mercury.NewCellReducer[[]string](mercury.FetchAuthorizations)
)

func Reduce(s State, a mercury.Action) State {
	s.Users = usersBase(s.Users, a)
	s.Workspace = wsBase(s.Workspace, a)
	s.Authorizations = authzBase(s.Authorizations, a)
	return s
}

// HasAuthorization reports whether the loaded authorizations contain role.
func (s State) HasAuthorization(role string) bool {
	if s.Authorizations == nil || !s.Authorizations.Loaded {
		return false
	}
	return slices.Contains(s.Authorizations.Data, role)
}

// UserByID looks id up in the loaded user list.
func (s State) UserByID(id string) (User, bool) {
	if s.Users == nil {
		return User{}, false
	}
	for _, u := range s.Users.Data {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
