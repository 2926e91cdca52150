package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultDirPerm is used when the output directory has to be created
	DefaultDirPerm = 0o750

	// OutputFileMode is the mode of every written output file
	OutputFileMode = 0o644
)

// OutputStore writes filled PDFs into the output directory. Writes to the same
// destination are serialized; each write lands atomically via rename.
type OutputStore struct {
	directory string
	filename  string
	unique    bool

	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// NewOutputStore creates the output directory if needed
func NewOutputStore(directory, filename string, unique bool) (*OutputStore, error) {
	if directory == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if filename == "" {
		return nil, fmt.Errorf("output filename cannot be empty")
	}
	if filepath.Base(filename) != filename {
		return nil, fmt.Errorf("output filename must not contain a directory: %s", filename)
	}

	if err := os.MkdirAll(directory, DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("cannot create output directory %s: %w", directory, err)
	}

	return &OutputStore{
		directory: directory,
		filename:  filename,
		unique:    unique,
		locks:     make(map[string]*pathLock),
	}, nil
}

// Directory returns the output directory
func (o *OutputStore) Directory() string {
	return o.directory
}

// NextName returns the file name the next fill should be written to
func (o *OutputStore) NextName() string {
	if !o.unique {
		return o.filename
	}
	ext := filepath.Ext(o.filename)
	stem := strings.TrimSuffix(o.filename, ext)
	return fmt.Sprintf("%s-%s%s", stem, uuid.NewString(), ext)
}

// Write stores the output of write under name and returns the final path
func (o *OutputStore) Write(name string, write func(w io.Writer) error) (string, error) {
	path := filepath.Join(o.directory, name)

	unlock := o.lock(path)
	defer unlock()

	tmp, err := os.CreateTemp(o.directory, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("cannot create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Chmod(OutputFileMode); err != nil {
		tmp.Close()
		return "", fmt.Errorf("cannot set output file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("cannot close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("cannot move output into place: %w", err)
	}

	return path, nil
}

// lock acquires the per-destination mutex for path
func (o *OutputStore) lock(path string) func() {
	o.mu.Lock()
	l, ok := o.locks[path]
	if !ok {
		l = &pathLock{}
		o.locks[path] = l
	}
	l.refs++
	o.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		o.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(o.locks, path)
		}
		o.mu.Unlock()
	}
}
