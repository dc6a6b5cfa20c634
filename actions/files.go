package actions

import (
	"context"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/files"
	"github.com/fairspace/mercury/state"
)

func (a *Actions) FetchFilesIfNeeded(ctx context.Context, dir string) mercury.Result[[]files.Entry] {
	k := mercury.PathKey(dir)
	p := mercury.PromiseAction{Kind: mercury.FetchFiles, Key: k, Do: func(ctx context.Context) (any, error) {
		if a.clients.Files == nil {
			return nil, ErrNoClient
		}
		return a.clients.Files.List(ctx, string(k))
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[[]files.Entry] { return s.Listings.Get(k) })
	return swallow(a, p, r, err)
}

func (a *Actions) StatFileIfNeeded(ctx context.Context, p string) mercury.Result[files.Info] {
	k := mercury.PathKey(p)
	pa := mercury.PromiseAction{Kind: mercury.StatFile, Key: k, Do: func(ctx context.Context) (any, error) {
		if a.clients.Files == nil {
			return nil, ErrNoClient
		}
		return a.clients.Files.Stat(ctx, string(k))
	}}
	r, err := ifNeeded(ctx, a, pa, func(s state.AppState) *mercury.Cell[files.Info] { return s.Infos.Get(k) })
	return swallow(a, pa, r, err)
}

func (a *Actions) InvalidateFiles(ctx context.Context, dir string) {
	a.store.Dispatch(ctx, files.InvalidateListing(dir))
}

func (a *Actions) InvalidateStat(ctx context.Context, p string) {
	a.store.Dispatch(ctx, files.InvalidateInfo(p))
}

// RenameFile renames current to next inside dir.
func (a *Actions) RenameFile(ctx context.Context, dir, current, next string) error {
	m := files.RenameMeta{From: files.Join(dir, current), To: files.Join(dir, next)}
	_, err := a.mutate(ctx, mercury.RenameFile, mercury.PathKey(m.From), m, func(ctx context.Context) (any, error) {
		if a.clients.Files == nil {
			return nil, ErrNoClient
		}
		return nil, a.clients.Files.Move(ctx, m.From, m.To)
	})
	return err
}

// DeleteFiles deletes every path concurrently. The whole batch is rejected
// when any delete fails; the ones that succeeded stay deleted.
func (a *Actions) DeleteFiles(ctx context.Context, paths ...string) error {
	m := files.DeleteMeta{Paths: paths}
	_, err := a.mutate(ctx, mercury.DeleteFiles, "", m, func(ctx context.Context) (any, error) {
		if a.clients.Files == nil {
			return nil, ErrNoClient
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.limit)
		for _, p := range paths {
			g.Go(func() error { return a.clients.Files.Delete(gctx, p) })
		}
		return nil, g.Wait()
	})
	return err
}

func (a *Actions) UploadFiles(ctx context.Context, dir string, uploads []files.Upload) error {
	m := files.UploadMeta{Dir: dir, Names: make([]string, 0, len(uploads))}
	for _, u := range uploads {
		m.Names = append(m.Names, u.Name)
	}
	_, err := a.mutate(ctx, mercury.UploadFiles, mercury.PathKey(dir), m, func(ctx context.Context) (any, error) {
		if a.clients.Files == nil {
			return nil, ErrNoClient
		}
		return nil, a.clients.Files.Upload(ctx, dir, uploads)
	})
	return err
}

func (a *Actions) CreateDirectory(ctx context.Context, p string) error {
	m := files.CreateDirectoryMeta{Path: p}
	_, err := a.mutate(ctx, mercury.CreateDirectory, mercury.PathKey(p), m, func(ctx context.Context) (any, error) {
		if a.clients.Files == nil {
			return nil, ErrNoClient
		}
		return nil, a.clients.Files.CreateDirectory(ctx, p)
	})
	return err
}

// Paste copies or moves sources into the destination directory, keeping
// their base names. A copy into the directory the source already lives in
// gets a counter added to its name (see files.AddCounter).
func (a *Actions) Paste(ctx context.Context, op files.PasteOp, sources []string, destination string) error {
	m := files.PasteMeta{Op: op, Sources: sources, Destination: destination}
	_, err := a.mutate(ctx, mercury.ClipboardPaste, mercury.PathKey(destination), m, func(ctx context.Context) (any, error) {
		if a.clients.Files == nil {
			return nil, ErrNoClient
		}
		transfer := a.clients.Files.Copy
		if op == files.OpCut {
			transfer = a.clients.Files.Move
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.limit)
		dir := mercury.PathKey(destination).String()
		for _, src := range sources {
			name := path.Base(src)
			if op == files.OpCopy && files.Parent(src) == dir {
				name = files.AddCounter(name)
			}
			dst := files.Join(dir, name)
			if op == files.OpCut && dst == mercury.PathKey(src).String() {
				continue
			}
			g.Go(func() error { return transfer(gctx, src, dst) })
		}
		return nil, g.Wait()
	})
	return err
}
