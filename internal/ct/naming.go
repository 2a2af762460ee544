package ct

import (
	"path/filepath"
	"strings"
)

// ResolveArchiveName appends defaultExt to name when the final path segment
// of name has no ".". Any name that already carries an extension is returned
// unchanged, even when that extension differs from defaultExt.
func ResolveArchiveName(name, defaultExt string) string {
	if strings.Contains(finalSegment(name), ".") {
		return name
	}
	return name + defaultExt
}

// ResolveExtractionFolder derives the folder an archive unpacks into: the
// final path segment of source, cut at its first ".". So "dir/data.tar.gz.age"
// gives "data", not "data.tar.gz". The result is empty when the segment
// starts with a dot.
func ResolveExtractionFolder(source string) string {
	base := finalSegment(source)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// finalSegment returns everything after the last separator. Unlike
// filepath.Base it does not strip trailing separators, so "out/" yields "".
func finalSegment(name string) string {
	i := strings.LastIndexAny(name, "/"+string(filepath.Separator))
	return name[i+1:]
}
