package container

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/soltixdb/segmentmerge/internal/errors"
	"github.com/soltixdb/segmentmerge/internal/utils"
)

// Reader opens a previously closed container and serves blobs back by
// name via the directory manifest written at Close.
type Reader struct {
	dir     string
	entries map[string]DirectoryEntry
}

// OpenReader reads dir's directory manifest without touching the
// physical files; blobs are read lazily on Get.
func OpenReader(dir string) (*Reader, error) {
	manifestPath := filepath.Join(dir, utils.ContainerDirectoryFileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.ContainerIO("read directory manifest", err)
	}

	var manifest struct {
		NumFiles int              `json:"numFiles"`
		Entries  []DirectoryEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.ContainerIO("parse directory manifest", err)
	}

	entries := make(map[string]DirectoryEntry, len(manifest.Entries))
	for _, e := range manifest.Entries {
		entries[e.Name] = e
	}

	return &Reader{dir: dir, entries: entries}, nil
}

// Has reports whether name is present in the container.
func (r *Reader) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns every blob name in the container, in no particular order.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Get reads and returns the full bytes of the named blob.
func (r *Reader) Get(name string) ([]byte, error) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, errors.InvalidInput("blob not found in container", map[string]interface{}{"name": name})
	}

	path := filepath.Join(r.dir, physicalFileName(entry.FileIndex))
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ContainerIO("open physical file", err)
	}
	defer func() { _ = f.Close() }()

	size := entry.EndOffset - entry.StartOffset
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, entry.StartOffset); err != nil {
		return nil, errors.ContainerIO("read blob", err)
	}
	return buf, nil
}
