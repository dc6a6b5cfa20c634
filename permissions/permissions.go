// Package permissions caches access lists per resource and patches them
// optimistically when a permission change succeeds.
package permissions

import (
	"context"
	"fmt"
	"strings"

	"github.com/fairspace/mercury"
)

// Access is the level a principal holds on a resource.
type Access uint8

const (
	None Access = iota
	Read
	Write
	Manage
)

func (a Access) String() string {
	switch a {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Manage:
		return "Manage"
	default:
		return "None"
	}
}

// ParseAccess accepts the names produced by String, case-insensitively.
func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(s) {
	case "none":
		return None, nil
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	case "manage":
		return Manage, nil
	}
	return None, fmt.Errorf("permissions: unknown access level %q", s)
}

func (a Access) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Access) UnmarshalText(b []byte) error {
	v, err := ParseAccess(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Permission grants Access on Resource to Principal.
type Permission struct {
	Principal string      `json:"principal" cbor:"principal" msgpack:"principal"`
	Access    Access      `json:"access" cbor:"access" msgpack:"access"`
	Resource  mercury.Key `json:"resource" cbor:"resource" msgpack:"resource"`
}

// Client is the permission REST collaborator.
type Client interface {
	List(ctx context.Context, resource mercury.Key) ([]Permission, error)
	Alter(ctx context.Context, principal string, resource mercury.Key, access Access) error
}

// AlterMeta accompanies ALTER_PERMISSION.
type AlterMeta struct {
	Principal string
	Resource  mercury.Key
	Access    Access
}

// ByResource maps a resource key to its cached permission list.
type ByResource = mercury.Cells[[]Permission]

var base = mercury.NewKeyedReducer[[]Permission](mercury.FetchPermissions, nil)

// Reduce applies FETCH_PERMISSIONS transitions and patches the cached list
// on a successful ALTER_PERMISSION. The patched cell is marked invalidated so
// the authoritative list is still fetched on next access.
func Reduce(s ByResource, a mercury.Action) ByResource {
	s = base(s, a)
	if !a.Is(mercury.AlterPermission, mercury.PhaseFulfilled) {
		return s
	}
	m, ok := a.Meta.(AlterMeta)
	if !ok || m.Resource == "" {
		return s
	}

	c := s[m.Resource]
	c.Data = patch(c.Data, m)
	c.Loaded = true
	c.Invalidated = true
	return s.With(m.Resource, c)
}

// patch returns a new list with the principal removed (None) or its entry
// replaced or appended.
func patch(list []Permission, m AlterMeta) []Permission {
	out := make([]Permission, 0, len(list)+1)
	replaced := false
	for _, p := range list {
		if p.Principal != m.Principal {
			out = append(out, p)
			continue
		}
		if m.Access != None && !replaced {
			p.Access = m.Access
			out = append(out, p)
			replaced = true
		}
	}
	if m.Access != None && !replaced {
		out = append(out, Permission{Principal: m.Principal, Access: m.Access, Resource: m.Resource})
	}
	return out
}

// Find returns the access principal holds in list.
func Find(list []Permission, principal string) Access {
	for _, p := range list {
		if p.Principal == principal {
			return p.Access
		}
	}
	return None
}
