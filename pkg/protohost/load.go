package protohost

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadDir reads every .proto file under root into a program. Unit paths are
// slash-separated and relative to root.
func LoadDir(root string, opts Options) (*Program, error) {
	return LoadFS(os.DirFS(root), opts)
}

// LoadFS reads every .proto file in fsys into a program.
func LoadFS(fsys fs.FS, opts Options) (*Program, error) {
	var units []Unit
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".proto" {
			return nil
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		units = append(units, Unit{Path: path, Content: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })
	return NewProgram(units, opts)
}
