package actions

import (
	"context"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/state"
	"github.com/fairspace/mercury/workspace"
)

func (a *Actions) FetchUsersIfNeeded(ctx context.Context) mercury.Result[[]workspace.User] {
	p := mercury.PromiseAction{Kind: mercury.FetchUsers, Do: func(ctx context.Context) (any, error) {
		if a.clients.Workspace == nil {
			return nil, ErrNoClient
		}
		return a.clients.Workspace.Users(ctx)
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[[]workspace.User] { return s.Workspace.Users })
	return swallow(a, p, r, err)
}

func (a *Actions) FetchWorkspaceIfNeeded(ctx context.Context) mercury.Result[workspace.Workspace] {
	p := mercury.PromiseAction{Kind: mercury.FetchWorkspace, Do: func(ctx context.Context) (any, error) {
		if a.clients.Workspace == nil {
			return nil, ErrNoClient
		}
		return a.clients.Workspace.Workspace(ctx)
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[workspace.Workspace] { return s.Workspace.Workspace })
	return swallow(a, p, r, err)
}

func (a *Actions) FetchAuthorizationsIfNeeded(ctx context.Context) mercury.Result[[]string] {
	p := mercury.PromiseAction{Kind: mercury.FetchAuthorizations, Do: func(ctx context.Context) (any, error) {
		if a.clients.Workspace == nil {
			return nil, ErrNoClient
		}
		return a.clients.Workspace.Authorizations(ctx)
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[[]string] { return s.Workspace.Authorizations })
	return swallow(a, p, r, err)
}
