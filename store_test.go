package mercury

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type testState struct {
	Users *Cell[[]string]
	Files Cells[[]entry]
}

var (
	usersReducer = NewCellReducer[[]string](FetchUsers)
	filesReducer = NewKeyedReducer[[]entry](FetchFiles, nil)
)

func reduceTestState(s testState, a Action) testState {
	s.Users = usersReducer(s.Users, a)
	s.Files = filesReducer(s.Files, a)
	return s
}

func newTestStore(opts Options) *Store[testState] {
	return NewStore(testState{}, reduceTestState, opts)
}

type recordingHooks struct {
	NopHooks
	mu       sync.Mutex
	rejected []Kind
}

func (h *recordingHooks) ActionRejected(k Kind, _ Key, _ error) {
	h.mu.Lock()
	h.rejected = append(h.rejected, k)
	h.mu.Unlock()
}

func TestRunEmitsPendingThenFulfilled(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(Options{})

	var seen []string
	st.Subscribe(func(_ context.Context, a Action, _, _ testState) {
		seen = append(seen, a.Type())
	})

	v, err := st.Run(ctx, PromiseAction{
		Kind: FetchFiles,
		Key:  "/coll",
		Do: func(context.Context) (any, error) {
			if c := st.State().Files.Get("/coll"); c == nil || !c.Pending {
				t.Errorf("cell should be pending while the operation runs: %+v", c)
			}
			return []entry{{Name: "f"}}, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := v.([]entry); len(got) != 1 {
		t.Fatalf("unexpected value %v", v)
	}
	want := []string{"FETCH_FILES_PENDING", "FETCH_FILES_FULFILLED"}
	if len(seen) != 2 || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("seen %v want %v", seen, want)
	}
	c := st.State().Files.Get("/coll")
	if c == nil || c.Pending || !c.Loaded || c.Data[0].Name != "f" {
		t.Fatalf("cell after run: %+v", c)
	}
}

func TestRunRejectsAndReportsActionError(t *testing.T) {
	ctx := context.Background()
	hooks := &recordingHooks{}
	st := newTestStore(Options{Hooks: hooks})

	boom := errors.New("boom")
	_, err := st.Run(ctx, PromiseAction{
		Kind: FetchUsers,
		Do:   func(context.Context) (any, error) { return nil, boom },
	})
	var ae *ActionError
	if !errors.As(err, &ae) || ae.Kind != FetchUsers || !errors.Is(err, boom) {
		t.Fatalf("expected ActionError wrapping boom, got %v", err)
	}
	c := st.State().Users
	if c == nil || c.Pending || !errors.Is(c.Err, boom) {
		t.Fatalf("cell after reject: %+v", c)
	}
	if len(hooks.rejected) != 1 || hooks.rejected[0] != FetchUsers {
		t.Fatalf("hook not called: %v", hooks.rejected)
	}
}

func TestRunWithoutOperation(t *testing.T) {
	st := newTestStore(Options{})
	if _, err := st.Run(context.Background(), PromiseAction{Kind: FetchUsers}); err == nil {
		t.Fatalf("expected error for missing operation")
	}
	if c := st.State().Users; c == nil || c.Err == nil {
		t.Fatalf("cell should carry the error: %+v", c)
	}
}

func TestRunSettlesAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := newTestStore(Options{})

	var settleErr error
	st.Subscribe(func(lctx context.Context, a Action, _, _ testState) {
		if a.Phase == PhaseRejected {
			settleErr = lctx.Err()
		}
	})

	_, err := st.Run(ctx, PromiseAction{
		Kind: FetchUsers,
		Do: func(ctx context.Context) (any, error) {
			cancel()
			return nil, ctx.Err()
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if settleErr != nil {
		t.Fatalf("listeners should get a live context on settle, got %v", settleErr)
	}
	if c := st.State().Users; c.Pending {
		t.Fatalf("cancelled operation must not stay pending")
	}
}

func TestUnsubscribe(t *testing.T) {
	st := newTestStore(Options{})
	n := 0
	unsub := st.Subscribe(func(context.Context, Action, testState, testState) { n++ })
	st.Dispatch(context.Background(), Invalidate(FetchUsers, ""))
	unsub()
	unsub()
	st.Dispatch(context.Background(), Invalidate(FetchUsers, ""))
	if n != 1 {
		t.Fatalf("listener called %d times, want 1", n)
	}
}

func TestListenerSeesPrevAndNext(t *testing.T) {
	st := newTestStore(Options{})
	st.Subscribe(func(_ context.Context, a Action, prev, next testState) {
		if prev.Users != nil {
			t.Errorf("prev should be the empty state")
		}
		if next.Users == nil || !next.Users.Invalidated {
			t.Errorf("next should carry the invalidation")
		}
	})
	st.Dispatch(context.Background(), Invalidate(FetchUsers, ""))
}

func TestConcurrentRunsTrackIndependentKeys(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(Options{})

	var wg sync.WaitGroup
	keys := []Key{"/a", "/b", "/c", "/d"}
	for _, k := range keys {
		wg.Add(1)
		go func(k Key) {
			defer wg.Done()
			_, _ = st.Run(ctx, PromiseAction{
				Kind: FetchFiles,
				Key:  k,
				Do: func(context.Context) (any, error) {
					return []entry{{Name: string(k)}}, nil
				},
			})
		}(k)
	}
	wg.Wait()

	files := st.State().Files
	for _, k := range keys {
		c := files.Get(k)
		if c == nil || !c.Loaded || c.Data[0].Name != string(k) {
			t.Fatalf("key %s: %+v", k, c)
		}
	}
}
