package files

// Mutations report the paths they touched through their Meta.

type RenameMeta struct {
	From string // full path before the rename
	To   string // full path after the rename
}

type DeleteMeta struct {
	Paths []string
}

type UploadMeta struct {
	Dir   string
	Names []string
}

type CreateDirectoryMeta struct {
	Path string
}

type PasteOp uint8

const (
	OpCopy PasteOp = iota + 1
	OpCut
)

func (o PasteOp) String() string {
	switch o {
	case OpCopy:
		return "COPY"
	case OpCut:
		return "CUT"
	default:
		return "NONE"
	}
}

type PasteMeta struct {
	Op          PasteOp
	Sources     []string
	Destination string // target directory
}
