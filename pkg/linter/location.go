package linter

import (
	"slices"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/diag"
)

// Field numbers used to build SourceCodeInfo paths.
const (
	FileMessageType   int32 = 4
	FileEnumType      int32 = 5
	FileService       int32 = 6
	MessageField      int32 = 2
	MessageNestedType int32 = 3
	MessageEnumType   int32 = 4
	EnumValue         int32 = 2
	ServiceMethod     int32 = 2
)

// Path returns prefix extended with elems, never aliasing prefix.
func Path(prefix []int32, elems ...int32) []int32 {
	out := slices.Clone(prefix)
	return append(out, elems...)
}

// Locator resolves descriptor paths to source positions.
type Locator struct {
	file      string
	locations map[string]*descriptorpb.SourceCodeInfo_Location
}

// NewLocator indexes the source info of file
func NewLocator(file *descriptorpb.FileDescriptorProto) *Locator {
	l := &Locator{
		file:      file.GetName(),
		locations: make(map[string]*descriptorpb.SourceCodeInfo_Location),
	}
	for _, loc := range file.GetSourceCodeInfo().GetLocation() {
		key := pathKey(loc.GetPath())
		if _, seen := l.locations[key]; !seen {
			l.locations[key] = loc
		}
	}
	return l
}

// Locate returns the position of the element at path. Without source info
// only the file is known.
func (l *Locator) Locate(path ...int32) diag.Location {
	loc := diag.Location{File: l.file}
	if src, ok := l.locations[pathKey(path)]; ok && len(src.GetSpan()) >= 3 {
		loc.Line = int(src.GetSpan()[0]) + 1
		loc.Column = int(src.GetSpan()[1]) + 1
	}
	return loc
}

// Comment returns the leading comment of the element at path
func (l *Locator) Comment(path ...int32) string {
	if src, ok := l.locations[pathKey(path)]; ok {
		return strings.TrimSpace(src.GetLeadingComments())
	}
	return ""
}

func pathKey(path []int32) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(int(p)))
	}
	return b.String()
}
