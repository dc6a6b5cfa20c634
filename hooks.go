package mercury

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The store calls them on the dispatch path.
type Hooks interface {
	// An operation run through Store.Run failed.
	ActionRejected(kind Kind, key Key, err error)

	// A persisted entry was deleted by a mirror on restore.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	SelfHealSingle(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// A mirror skipped a write whose observed generation moved.
	StaleWriteSkipped(storageKey string, observed uint64)

	// GenStore errors (snapshot or bump).
	// count is number of keys involved.
	GenSnapshotError(count int, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed during Invalidate (likely backend outage).
	InvalidateOutage(key string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) ActionRejected(Kind, Key, error)       {}
func (NopHooks) SelfHealSingle(string, string)         {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) StaleWriteSkipped(string, uint64)      {}
func (NopHooks) GenSnapshotError(int, error)           {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}
