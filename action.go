package mercury

import "context"

// Kind identifies one logical asynchronous operation.
type Kind uint8

const (
	KindUnknown Kind = iota

	// collections
	FetchCollections
	AddCollection
	UpdateCollection
	DeleteCollection

	// files
	FetchFiles
	StatFile
	RenameFile
	DeleteFiles
	UploadFiles
	CreateDirectory
	ClipboardPaste

	// metadata
	FetchMetadata
	UpdateMetadata
	CombineMetadata
	FetchVocabulary
	FetchMetaVocabulary
	UpdateVocabulary
	FetchEntities
	FetchAllEntities
	CreateMetadataEntity
	FetchSubjectByPath

	// permissions
	FetchPermissions
	AlterPermission

	// workspace
	FetchUsers
	FetchWorkspace
	FetchAuthorizations

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:          "UNKNOWN",
	FetchCollections:     "FETCH_COLLECTIONS",
	AddCollection:        "ADD_COLLECTION",
	UpdateCollection:     "UPDATE_COLLECTION",
	DeleteCollection:     "DELETE_COLLECTION",
	FetchFiles:           "FETCH_FILES",
	StatFile:             "STAT_FILE",
	RenameFile:           "RENAME_FILE",
	DeleteFiles:          "DELETE_FILES",
	UploadFiles:          "UPLOAD_FILES",
	CreateDirectory:      "CREATE_DIRECTORY",
	ClipboardPaste:       "CLIPBOARD_PASTE",
	FetchMetadata:        "FETCH_METADATA",
	UpdateMetadata:       "UPDATE_METADATA",
	CombineMetadata:      "COMBINE_METADATA",
	FetchVocabulary:      "FETCH_VOCABULARY",
	FetchMetaVocabulary:  "FETCH_META_VOCABULARY",
	UpdateVocabulary:     "UPDATE_VOCABULARY",
	FetchEntities:        "FETCH_METADATA_ENTITIES",
	FetchAllEntities:     "FETCH_ALL_METADATA_ENTITIES",
	CreateMetadataEntity: "CREATE_METADATA_ENTITY",
	FetchSubjectByPath:   "FETCH_METADATA_URI_BY_PATH",
	FetchPermissions:     "FETCH_PERMISSIONS",
	AlterPermission:      "ALTER_PERMISSION",
	FetchUsers:           "FETCH_USERS",
	FetchWorkspace:       "FETCH_WORKSPACE",
	FetchAuthorizations:  "FETCH_AUTHORIZATIONS",
}

func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// IsMutation reports whether k changes server-side state. Mutation errors
// propagate to callers; fetch errors are recorded on the cell.
func (k Kind) IsMutation() bool {
	switch k {
	case AddCollection, UpdateCollection, DeleteCollection,
		RenameFile, DeleteFiles, UploadFiles, CreateDirectory, ClipboardPaste,
		UpdateMetadata, UpdateVocabulary, CreateMetadataEntity,
		AlterPermission:
		return true
	default:
		return false
	}
}

// Phase is the step of an asynchronous operation an Action reports.
type Phase uint8

const (
	PhasePending Phase = iota + 1
	PhaseFulfilled
	PhaseRejected
	PhaseInvalidated
	// PhaseRestored seeds a cell from a persisted mirror. It never
	// overwrites a cell that already exists.
	PhaseRestored
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "PENDING"
	case PhaseFulfilled:
		return "FULFILLED"
	case PhaseRejected:
		return "REJECTED"
	case PhaseInvalidated:
		return "INVALIDATE"
	case PhaseRestored:
		return "RESTORED"
	default:
		return "UNKNOWN"
	}
}

// Action is the only input to reducers.
// Payload carries the fulfilled value (or restored value), Err the rejection
// cause and Meta the operation-specific parameters overlays react to.
type Action struct {
	Kind    Kind
	Phase   Phase
	Key     Key
	Payload any
	Err     error
	Meta    any
}

// Type renders the action tag, e.g. FETCH_FILES_PENDING or INVALIDATE_FETCH_FILES.
func (a Action) Type() string {
	if a.Phase == PhaseInvalidated {
		return "INVALIDATE_" + a.Kind.String()
	}
	return a.Kind.String() + "_" + a.Phase.String()
}

// Is reports whether a is the given phase of kind k.
func (a Action) Is(k Kind, p Phase) bool { return a.Kind == k && a.Phase == p }

func Pending(k Kind, key Key, meta any) Action {
	return Action{Kind: k, Phase: PhasePending, Key: key, Meta: meta}
}

func Fulfilled(k Kind, key Key, payload, meta any) Action {
	return Action{Kind: k, Phase: PhaseFulfilled, Key: key, Payload: payload, Meta: meta}
}

func Rejected(k Kind, key Key, err error, meta any) Action {
	return Action{Kind: k, Phase: PhaseRejected, Key: key, Err: err, Meta: meta}
}

func Invalidate(k Kind, key Key) Action {
	return Action{Kind: k, Phase: PhaseInvalidated, Key: key}
}

func Restore(k Kind, key Key, payload any) Action {
	return Action{Kind: k, Phase: PhaseRestored, Key: key, Payload: payload}
}

// PromiseAction is an operation to run through Store.Run, which emits its
// Pending, Fulfilled and Rejected actions.
type PromiseAction struct {
	Kind Kind
	Key  Key
	Meta any
	Do   func(ctx context.Context) (any, error)
}
