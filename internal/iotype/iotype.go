// Package iotype defines the data that flows through pipes between blocks:
// files, text files, sheets and tables.
package iotype

import (
	"fmt"
	"mime"
	"path"
	"strings"
)

// IOType is the type of a block's input or output port.
type IOType uint8

const (
	TypeNone IOType = iota + 1
	TypeFile
	TypeTextFile
	TypeSheet
	TypeTable
)

var ioTypeNames = map[IOType]string{
	TypeNone:     "None",
	TypeFile:     "File",
	TypeTextFile: "TextFile",
	TypeSheet:    "Sheet",
	TypeTable:    "Table",
}

func (t IOType) String() string {
	if name, ok := ioTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("IOType(%d)", uint8(t))
}

// ParseIOType looks up an IO type by name.
func ParseIOType(name string) (IOType, bool) {
	for t, n := range ioTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Value is data passed between blocks.
type Value interface {
	IOType() IOType
}

type noneValue struct{}

func (noneValue) IOType() IOType { return TypeNone }

// None is the value of a port that carries no data. It is distinct from a nil
// Value, which means "the producer had nothing to hand on".
var None Value = noneValue{}

// File is raw binary content.
type File struct {
	Name      string
	Extension string
	MimeType  string
	Content   []byte
}

func (*File) IOType() IOType { return TypeFile }

// NewFile creates a file named after the last element of name. When mimeType
// is empty it is derived from the extension.
func NewFile(name string, content []byte, mimeType string) *File {
	base := path.Base(name)
	ext := strings.TrimPrefix(path.Ext(base), ".")
	if mimeType == "" && ext != "" {
		mimeType = mime.TypeByExtension("." + ext)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return &File{Name: base, Extension: ext, MimeType: mimeType, Content: content}
}

// TextFile is a file decoded into lines.
type TextFile struct {
	Name      string
	Extension string
	MimeType  string
	Lines     []string
}

func (*TextFile) IOType() IOType { return TypeTextFile }
