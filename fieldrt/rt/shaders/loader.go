package shaders

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrIO is wrapped by every IOError.
var ErrIO = errors.New("shaders: resource unreadable")

// IOError reports a shader resource that could not be read or was empty.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("shaders: could not load %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("shaders: could not load %s: empty resource", e.Path)
}

func (e *IOError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrIO, e.Err}
	}
	return []error{ErrIO}
}

// IncludeDirective is the literal line that Splice looks for.
func IncludeDirective(headerName string) string {
	return `#include "` + headerName + `"`
}

// Splice replaces the first occurrence of directive in src with header.
// Later occurrences are left as they are. If the directive is absent src is
// returned unchanged.
func Splice(src, directive, header string) string {
	pos := strings.Index(src, directive)
	if pos < 0 {
		return src
	}
	return src[:pos] + header + src[pos+len(directive):]
}

// Load reads the main shader and its header from disk and splices the header
// in place of `#include "<header base name>"`.
func Load(mainPath, headerPath string) (string, error) {
	src, err := readSource(mainPath, os.ReadFile)
	if err != nil {
		return "", err
	}
	header, err := readSource(headerPath, os.ReadFile)
	if err != nil {
		return "", err
	}
	return Splice(src, IncludeDirective(filepath.Base(headerPath)), header), nil
}

// LoadFS is Load over a file system, e.g. Embedded.
func LoadFS(fsys fs.FS, mainName, headerName string) (string, error) {
	read := func(name string) ([]byte, error) { return fs.ReadFile(fsys, name) }

	src, err := readSource(mainName, read)
	if err != nil {
		return "", err
	}
	header, err := readSource(headerName, read)
	if err != nil {
		return "", err
	}
	return Splice(src, IncludeDirective(path.Base(headerName)), header), nil
}

// Default returns the bundled particle program with its definitions spliced in.
func Default() string {
	return Splice(ParticlesWGSL, IncludeDirective(DefinitionsFile), DefinitionsWGSL)
}

func readSource(name string, read func(string) ([]byte, error)) (string, error) {
	b, err := read(name)
	if err != nil {
		return "", &IOError{Path: name, Err: err}
	}
	if len(b) == 0 {
		return "", &IOError{Path: name}
	}
	return string(b), nil
}
