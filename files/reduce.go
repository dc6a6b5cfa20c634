package files

import (
	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/collections"
)

// Listings maps a directory path to its cached listing.
type Listings = mercury.Cells[[]Entry]

// Infos maps a path to its cached stat result.
type Infos = mercury.Cells[Info]

var (
	listingBase = mercury.NewKeyedReducer[[]Entry](mercury.FetchFiles, nil)
	infoBase    = mercury.NewKeyedReducer[Info](mercury.StatFile, nil)
)

// ReduceListings applies FETCH_FILES transitions and, when a file mutation
// succeeds, invalidates the listings of the directories it touched.
func ReduceListings(s Listings, a mercury.Action) Listings {
	s = listingBase(s, a)
	if a.Phase != mercury.PhaseFulfilled {
		return s
	}
	dirs, trees := listingTargets(a)
	if len(dirs) == 0 && len(trees) == 0 {
		return s
	}
	return s.InvalidateWhere(func(k mercury.Key) bool {
		return matches(k, dirs, trees)
	})
}

// ReduceInfos applies STAT_FILE transitions and invalidates the stat results
// of mutated paths and of everything below them.
func ReduceInfos(s Infos, a mercury.Action) Infos {
	s = infoBase(s, a)
	if a.Phase != mercury.PhaseFulfilled {
		return s
	}
	exact, trees := infoTargets(a)
	if len(exact) == 0 && len(trees) == 0 {
		return s
	}
	return s.InvalidateWhere(func(k mercury.Key) bool {
		return matches(k, exact, trees)
	})
}

// InvalidateListing marks the listing of dir stale.
func InvalidateListing(dir string) mercury.Action {
	return mercury.Invalidate(mercury.FetchFiles, mercury.PathKey(dir))
}

// InvalidateInfo marks the stat result of p stale.
func InvalidateInfo(p string) mercury.Action {
	return mercury.Invalidate(mercury.StatFile, mercury.PathKey(p))
}

func matches(k mercury.Key, exact, trees []string) bool {
	p := string(k)
	for _, e := range exact {
		if p == e {
			return true
		}
	}
	for _, root := range trees {
		if IsUnder(p, root) {
			return true
		}
	}
	return false
}

// listingTargets returns the directories whose listing a fulfilled mutation
// made stale, plus collection roots to invalidate recursively.
func listingTargets(a mercury.Action) (dirs, trees []string) {
	switch a.Kind {
	case mercury.RenameFile:
		if m, ok := a.Meta.(RenameMeta); ok {
			dirs = appendUnique(dirs, Parent(m.From), Parent(m.To))
		}
	case mercury.DeleteFiles:
		if m, ok := a.Meta.(DeleteMeta); ok {
			for _, p := range m.Paths {
				dirs = appendUnique(dirs, Parent(p))
			}
		}
	case mercury.UploadFiles:
		if m, ok := a.Meta.(UploadMeta); ok {
			dirs = appendUnique(dirs, clean(m.Dir))
		}
	case mercury.CreateDirectory:
		if m, ok := a.Meta.(CreateDirectoryMeta); ok {
			dirs = appendUnique(dirs, Parent(m.Path))
		}
	case mercury.ClipboardPaste:
		if m, ok := a.Meta.(PasteMeta); ok {
			for _, p := range m.Sources {
				dirs = appendUnique(dirs, Parent(p))
			}
			dirs = appendUnique(dirs, clean(m.Destination))
		}
	case mercury.UpdateCollection, mercury.DeleteCollection:
		if m, ok := a.Meta.(collections.ChangeMeta); ok {
			trees = m.Roots()
		}
	}
	return dirs, trees
}

// infoTargets returns paths whose stat result is stale. Renamed, deleted and
// pasted paths are invalidated with everything below them.
func infoTargets(a mercury.Action) (exact, trees []string) {
	switch a.Kind {
	case mercury.RenameFile:
		if m, ok := a.Meta.(RenameMeta); ok {
			trees = appendUnique(trees, clean(m.From), clean(m.To))
		}
	case mercury.DeleteFiles:
		if m, ok := a.Meta.(DeleteMeta); ok {
			for _, p := range m.Paths {
				trees = appendUnique(trees, clean(p))
			}
		}
	case mercury.UploadFiles:
		if m, ok := a.Meta.(UploadMeta); ok {
			for _, n := range m.Names {
				exact = appendUnique(exact, Join(m.Dir, n))
			}
		}
	case mercury.CreateDirectory:
		if m, ok := a.Meta.(CreateDirectoryMeta); ok {
			exact = appendUnique(exact, clean(m.Path))
		}
	case mercury.ClipboardPaste:
		if m, ok := a.Meta.(PasteMeta); ok {
			for _, p := range m.Sources {
				trees = appendUnique(trees, clean(p))
			}
		}
	case mercury.UpdateCollection, mercury.DeleteCollection:
		if m, ok := a.Meta.(collections.ChangeMeta); ok {
			trees = m.Roots()
		}
	}
	return exact, trees
}

func appendUnique(dst []string, ps ...string) []string {
next:
	for _, p := range ps {
		for _, d := range dst {
			if d == p {
				continue next
			}
		}
		dst = append(dst, p)
	}
	return dst
}
