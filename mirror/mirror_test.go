package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/codec"
	"github.com/fairspace/mercury/files"
	"github.com/fairspace/mercury/genstore"
	"github.com/fairspace/mercury/internal/wire"
	"github.com/fairspace/mercury/state"
)

type memProvider struct {
	mu     sync.Mutex
	m      map[string][]byte
	reject bool
	delErr error
}

func newMemProvider() *memProvider { return &memProvider{m: map[string][]byte{}} }

func (p *memProvider) Get(_ context.Context, k string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.m[k]
	return b, ok, nil
}

func (p *memProvider) Set(_ context.Context, k string, v []byte, _ int64, _ time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject {
		return false, nil
	}
	p.m[k] = append([]byte(nil), v...)
	return true, nil
}

func (p *memProvider) Del(_ context.Context, k string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.delErr != nil {
		return p.delErr
	}
	delete(p.m, k)
	return nil
}

func (p *memProvider) Close(context.Context) error { return nil }

func (p *memProvider) has(k string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[k]
	return ok
}

type failingGens struct {
	genstore.GenStore
	err error
}

func (g failingGens) Bump(context.Context, string) (uint64, error) { return 0, g.err }

type recordingHooks struct {
	mercury.NopHooks
	mu       sync.Mutex
	healed   map[string]string
	stale    int
	rejected int
	outages  int
}

func (h *recordingHooks) SelfHealSingle(k, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.healed == nil {
		h.healed = map[string]string{}
	}
	h.healed[k] = reason
}

func (h *recordingHooks) StaleWriteSkipped(string, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stale++
}

func (h *recordingHooks) ProviderSetRejected(string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rejected++
}

func (h *recordingHooks) InvalidateOutage(string, error, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outages++
}

type fixture struct {
	store *state.Store
	prov  *memProvider
	gens  *genstore.Local
	hooks *recordingHooks
	m     *Mirror[state.AppState, []files.Entry]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: state.NewStore(mercury.Options{}),
		prov:  newMemProvider(),
		gens:  genstore.NewLocal(0, 0),
		hooks: &recordingHooks{},
	}
	m, err := New(Options[state.AppState, []files.Entry]{
		Namespace: "listings",
		Kind:      mercury.FetchFiles,
		Select:    func(s state.AppState) mercury.Cells[[]files.Entry] { return s.Listings },
		Provider:  f.prov,
		Codec:     codec.MustCBOR[[]files.Entry](true),
		GenStore:  f.gens,
		Hooks:     f.hooks,
	})
	if err != nil {
		t.Fatal(err)
	}
	f.m = m
	t.Cleanup(f.m.Attach(f.store))
	return f
}

func (f *fixture) fetch(t *testing.T, dir string, entries []files.Entry) {
	t.Helper()
	_, err := f.store.Run(context.Background(), mercury.PromiseAction{
		Kind: mercury.FetchFiles,
		Key:  mercury.PathKey(dir),
		Do:   func(context.Context) (any, error) { return entries, nil },
	})
	if err != nil {
		t.Fatal(err)
	}
}

var listing = []files.Entry{
	{Filename: "/c1/a.txt", Basename: "a.txt", Size: 3, Type: files.TypeFile},
	{Filename: "/c1/sub", Basename: "sub", Type: files.TypeDirectory},
}

func TestFulfilledFetchIsPersistedAndRestored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fetch(t, "/c1", listing)

	if !f.prov.has("mirror:listings:/c1") {
		t.Fatalf("listing not persisted")
	}

	fresh := state.NewStore(mercury.Options{})
	n, err := f.m.Restore(ctx, fresh, []mercury.Key{"/c1", "/c2"})
	if err != nil || n != 1 {
		t.Fatalf("restore: n=%d err=%v", n, err)
	}
	c := fresh.State().Listings.Get("/c1")
	if c == nil || !c.Loaded || !c.Invalidated || len(c.Data) != 2 || c.Data[1].Basename != "sub" {
		t.Fatalf("restored cell: %+v", c)
	}
	if !mercury.ShouldUpdate(c) {
		t.Fatalf("restored cell must be revalidated")
	}
}

func TestRestoreNeverOverwritesLiveCells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fetch(t, "/c1", listing)

	live := []files.Entry{{Filename: "/c1/new.txt", Basename: "new.txt"}}
	f.store.Dispatch(ctx, mercury.Fulfilled(mercury.FetchFiles, "/c1", live, nil))
	before := f.store.State().Listings

	if _, err := f.m.Restore(ctx, f.store, []mercury.Key{"/c1"}); err != nil {
		t.Fatal(err)
	}
	if !mercury.SameCells(f.store.State().Listings, before) {
		t.Fatalf("restore replaced a live cell")
	}
}

func TestInvalidationDeletesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fetch(t, "/c1", listing)

	_, err := f.store.Run(ctx, mercury.PromiseAction{
		Kind: mercury.RenameFile,
		Meta: files.RenameMeta{From: "/c1/a.txt", To: "/c1/b.txt"},
		Do:   func(context.Context) (any, error) { return nil, nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	if f.prov.has("mirror:listings:/c1") {
		t.Fatalf("invalidated listing still persisted")
	}
	if g, _ := f.gens.Snapshot(ctx, "mirror:listings:/c1"); g != 1 {
		t.Fatalf("gen = %d, want 1", g)
	}

	// the refetch is written under the new generation
	f.fetch(t, "/c1", listing[:1])
	n, _ := f.m.Restore(ctx, state.NewStore(mercury.Options{}), []mercury.Key{"/c1"})
	if n != 1 {
		t.Fatalf("refetched listing not restorable")
	}
}

func TestStaleWriteIsSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Run(ctx, mercury.PromiseAction{
		Kind: mercury.FetchFiles,
		Key:  "/c1",
		Do: func(ctx context.Context) (any, error) {
			// a mutation lands while the listing is in flight
			f.store.Dispatch(ctx, files.InvalidateListing("/c1"))
			return listing, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if f.prov.has("mirror:listings:/c1") {
		t.Fatalf("stale listing persisted")
	}
	if f.hooks.stale != 1 {
		t.Fatalf("stale hook calls = %d", f.hooks.stale)
	}
}

func TestRejectedFetchIsNotPersisted(t *testing.T) {
	f := newFixture(t)
	_, _ = f.store.Run(context.Background(), mercury.PromiseAction{
		Kind: mercury.FetchFiles,
		Key:  "/c1",
		Do:   func(context.Context) (any, error) { return nil, errors.New("boom") },
	})
	if f.prov.has("mirror:listings:/c1") {
		t.Fatalf("rejected fetch persisted")
	}
}

// session opens a mirror over an existing provider, as a restarted client would.
func session(t *testing.T, prov *memProvider, gens genstore.GenStore, hooks mercury.Hooks) *Mirror[state.AppState, []files.Entry] {
	t.Helper()
	m, err := New(Options[state.AppState, []files.Entry]{
		Namespace: "listings",
		Kind:      mercury.FetchFiles,
		Select:    func(s state.AppState) mercury.Cells[[]files.Entry] { return s.Listings },
		Provider:  prov,
		Codec:     codec.MustCBOR[[]files.Entry](true),
		GenStore:  gens,
		Hooks:     hooks,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRestoreAcrossRestartNeedsPersistentGens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fetch(t, "/c1", listing)
	f.store.Dispatch(ctx, files.InvalidateListing("/c1"))
	f.fetch(t, "/c1", listing)
	if !f.prov.has("mirror:listings:/c1") {
		t.Fatalf("refetched listing not persisted")
	}

	// generations that outlive the process keep the entry valid
	n, err := session(t, f.prov, f.gens, nil).Restore(ctx, state.NewStore(mercury.Options{}), []mercury.Key{"/c1"})
	if err != nil || n != 1 {
		t.Fatalf("restore with surviving gens: n=%d err=%v", n, err)
	}

	// in-process generations restart at 0, so the entry is dropped
	hooks := &recordingHooks{}
	n, err = session(t, f.prov, genstore.NewLocal(0, 0), hooks).Restore(ctx, state.NewStore(mercury.Options{}), []mercury.Key{"/c1"})
	if err != nil || n != 0 {
		t.Fatalf("restore with fresh local gens: n=%d err=%v", n, err)
	}
	if hooks.healed["mirror:listings:/c1"] != "gen_mismatch" {
		t.Fatalf("healed: %v", hooks.healed)
	}
	if f.prov.has("mirror:listings:/c1") {
		t.Fatalf("mismatched entry kept")
	}
}

func TestRestoreSelfHeals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.prov.Set(ctx, "mirror:listings:/corrupt", []byte("not a frame"), 1, 0)
	_, _ = f.prov.Set(ctx, "mirror:listings:/undecodable", wire.Encode(0, []byte{0xff, 0xff}), 1, 0)
	f.fetch(t, "/old", listing)
	if _, err := f.gens.Bump(ctx, "mirror:listings:/old"); err != nil {
		t.Fatal(err)
	}

	n, err := f.m.Restore(ctx, state.NewStore(mercury.Options{}), []mercury.Key{"/corrupt", "/undecodable", "/old"})
	if err != nil || n != 0 {
		t.Fatalf("restore: n=%d err=%v", n, err)
	}
	want := map[string]string{
		"mirror:listings:/corrupt":     "corrupt",
		"mirror:listings:/undecodable": "value_decode",
		"mirror:listings:/old":         "gen_mismatch",
	}
	for k, reason := range want {
		if f.hooks.healed[k] != reason {
			t.Fatalf("%s healed as %q, want %q", k, f.hooks.healed[k], reason)
		}
		if f.prov.has(k) {
			t.Fatalf("%s not deleted", k)
		}
	}
}

func TestProviderRejectionIsReported(t *testing.T) {
	f := newFixture(t)
	f.prov.reject = true
	f.fetch(t, "/c1", listing)
	if f.hooks.rejected != 1 {
		t.Fatalf("rejected hook calls = %d", f.hooks.rejected)
	}
}

func TestInvalidateOutage(t *testing.T) {
	ctx := context.Background()
	prov := newMemProvider()
	prov.delErr = errors.New("del down")
	hooks := &recordingHooks{}
	bumpErr := errors.New("gen down")
	m, err := New(Options[state.AppState, []files.Entry]{
		Namespace: "listings",
		Kind:      mercury.FetchFiles,
		Select:    func(s state.AppState) mercury.Cells[[]files.Entry] { return s.Listings },
		Provider:  prov,
		Codec:     codec.JSON[[]files.Entry]{},
		GenStore:  failingGens{GenStore: genstore.NewLocal(0, 0), err: bumpErr},
		Hooks:     hooks,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = m.Invalidate(ctx, "/c1")
	var ie *mercury.InvalidateError
	if !errors.As(err, &ie) || !errors.Is(err, bumpErr) || !errors.Is(err, prov.delErr) {
		t.Fatalf("want InvalidateError with both causes, got %v", err)
	}
	if hooks.outages != 1 {
		t.Fatalf("outage hook calls = %d", hooks.outages)
	}

	prov.delErr = nil
	if err := m.Invalidate(ctx, "/c1"); !errors.Is(err, bumpErr) {
		t.Fatalf("bump failure not reported: %v", err)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options[state.AppState, []files.Entry]{})
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("want ErrNoProvider, got %v", err)
	}
	_, err = New(Options[state.AppState, []files.Entry]{Provider: newMemProvider(), Codec: codec.JSON[[]files.Entry]{}})
	if !errors.Is(err, ErrNoNamespace) {
		t.Fatalf("want ErrNoNamespace, got %v", err)
	}
}
