package definition

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Resolver maps a logical document name to its content. The loader
// reads every document through a Resolver, so the same code path
// serves filesystem files and documents bundled into the binary.
type Resolver interface {
	// Resolve returns the document bytes for a name. It reports
	// ErrFileNotFound when the name does not exist.
	Resolve(name string) ([]byte, error)
}

// dirResolver resolves names against a base directory.
type dirResolver struct {
	base string
}

// newDirResolver creates a resolver rooted at the given directory.
func newDirResolver(base string) Resolver {
	return &dirResolver{base: base}
}

func (r *dirResolver) Resolve(name string) ([]byte, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.base, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

//go:embed bundled/*.yaml
var bundledFS embed.FS

// bundledResolver resolves names against the documents compiled into
// the binary under bundled/.
type bundledResolver struct{}

func (bundledResolver) Resolve(name string) ([]byte, error) {
	data, err := bundledFS.ReadFile("bundled/" + name)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("%w: bundled %s", ErrFileNotFound, name)
		}
		return nil, fmt.Errorf("reading bundled %s: %w", name, err)
	}
	return data, nil
}

// BundledNames lists the documents compiled into the binary.
func BundledNames() []string {
	entries, err := bundledFS.ReadDir("bundled")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
