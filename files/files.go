// Package files caches WebDAV directory listings and file stat results, and
// invalidates them when file mutations succeed.
package files

import (
	"context"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type EntryType string

const (
	TypeFile      EntryType = "file"
	TypeDirectory EntryType = "directory"
)

// Entry is one item of a directory listing.
type Entry struct {
	Filename string    `json:"filename" cbor:"filename" msgpack:"filename"`
	Basename string    `json:"basename" cbor:"basename" msgpack:"basename"`
	Size     int64     `json:"size" cbor:"size" msgpack:"size"`
	Type     EntryType `json:"type" cbor:"type" msgpack:"type"`
	LastMod  time.Time `json:"lastmod" cbor:"lastmod" msgpack:"lastmod"`
	ETag     string    `json:"etag" cbor:"etag" msgpack:"etag"`
}

func (e Entry) IsDirectory() bool { return e.Type == TypeDirectory }

// Info is the stat result for a single path.
type Info struct {
	Entry
	Props map[string]string `json:"props,omitempty" cbor:"props,omitempty" msgpack:"props,omitempty"`
}

// Upload is one file to store in a directory.
type Upload struct {
	Name string
	Body io.Reader
}

// Client is the WebDAV collaborator.
type Client interface {
	List(ctx context.Context, dir string) ([]Entry, error)
	Stat(ctx context.Context, p string) (Info, error)
	CreateDirectory(ctx context.Context, p string) error
	Upload(ctx context.Context, dir string, files []Upload) error
	Delete(ctx context.Context, p string) error
	Move(ctx context.Context, src, dst string) error
	Copy(ctx context.Context, src, dst string) error
}

// Parent returns the directory containing p. The parent of the root is the root.
func Parent(p string) string {
	return path.Dir(clean(p))
}

// Join joins dir and name into a clean absolute path.
func Join(dir, name string) string {
	return clean(path.Join(dir, name))
}

// IsUnder reports whether p equals root or lies below it.
func IsUnder(p, root string) bool {
	p, root = clean(p), clean(root)
	if root == "/" || p == root {
		return true
	}
	return strings.HasPrefix(p, root+"/")
}

var counterSuffix = regexp.MustCompile(` \((\d+)\)$`)

// AddCounter returns the name a copy of name gets inside its own directory:
// "a.txt" becomes "a (2).txt" and an existing trailing counter is bumped,
// so "a (2).txt" becomes "a (3).txt". name is a base name.
func AddCounter(name string) string {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	}
	n := 2
	if m := counterSuffix.FindStringSubmatchIndex(base); m != nil {
		if c, err := strconv.Atoi(base[m[2]:m[3]]); err == nil {
			base, n = base[:m[0]], c+1
		}
	}
	return base + " (" + strconv.Itoa(n) + ")" + ext
}

func clean(p string) string {
	return path.Clean("/" + p)
}
