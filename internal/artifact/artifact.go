package artifact

import (
	"fmt"
	"os"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
)

// Mapped is a read-only view of a whole file.
type Mapped struct {
	path  string
	data  []byte
	unmap func() error
}

// Open maps the file at path read-only. Returns an error wrapping
// ErrArtifactIO if the file cannot be opened, is a directory, or cannot be mapped.
func Open(path string) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrArtifactIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrArtifactIO, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", kerrors.ErrArtifactIO, path)
	}

	// Zero-length files cannot be mapped and have nothing to scan anyway.
	if info.Size() == 0 {
		return &Mapped{path: path, unmap: func() error { return nil }}, nil
	}

	data, unmap, err := mapFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrArtifactIO, path, err)
	}

	return &Mapped{path: path, data: data, unmap: unmap}, nil
}

// OpenAll maps every path. If any path fails, the ones already mapped are
// closed and the error is returned.
func OpenAll(paths []string) ([]*Mapped, error) {
	mapped := make([]*Mapped, 0, len(paths))
	for _, p := range paths {
		m, err := Open(p)
		if err != nil {
			CloseAll(mapped)
			return nil, err
		}
		mapped = append(mapped, m)
	}
	return mapped, nil
}

// CloseAll unmaps every artifact, ignoring errors.
func CloseAll(mapped []*Mapped) {
	for _, m := range mapped {
		_ = m.Close()
	}
}

// Name returns the path the artifact was opened from.
func (m *Mapped) Name() string {
	return m.path
}

// Bytes returns the mapped contents. The slice must not be written to and
// is invalid after Close.
func (m *Mapped) Bytes() []byte {
	return m.data
}

// Len returns the artifact size in bytes.
func (m *Mapped) Len() int {
	return len(m.data)
}

// Close releases the mapping. Calling Close more than once is a no-op.
func (m *Mapped) Close() error {
	if m.unmap == nil {
		return nil
	}
	err := m.unmap()
	m.unmap = nil
	m.data = nil
	return err
}
