package actions

import (
	"context"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/permissions"
	"github.com/fairspace/mercury/state"
)

func (a *Actions) FetchPermissionsIfNeeded(ctx context.Context, resource mercury.Key) mercury.Result[[]permissions.Permission] {
	p := mercury.PromiseAction{Kind: mercury.FetchPermissions, Key: resource, Do: func(ctx context.Context) (any, error) {
		if a.clients.Permissions == nil {
			return nil, ErrNoClient
		}
		return a.clients.Permissions.List(ctx, resource)
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[[]permissions.Permission] {
		return s.Permissions.Get(resource)
	})
	return swallow(a, p, r, err)
}

func (a *Actions) AlterPermission(ctx context.Context, principal string, resource mercury.Key, access permissions.Access) error {
	m := permissions.AlterMeta{Principal: principal, Resource: resource, Access: access}
	_, err := a.mutate(ctx, mercury.AlterPermission, resource, m, func(ctx context.Context) (any, error) {
		if a.clients.Permissions == nil {
			return nil, ErrNoClient
		}
		return nil, a.clients.Permissions.Alter(ctx, principal, resource, access)
	})
	return err
}
