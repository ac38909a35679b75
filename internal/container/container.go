// Package container implements the bounded multi-file blob concatenator
// ("smoosh") that every segment's column bytes, index.drd and
// metadata.drd are packed into.
package container

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/soltixdb/segmentmerge/internal/errors"
	"github.com/soltixdb/segmentmerge/internal/logging"
	"github.com/soltixdb/segmentmerge/internal/utils"
)

// DirectoryEntry records where one named blob lives: which physical file,
// and its byte range within that file.
type DirectoryEntry struct {
	Name        string `json:"name"`
	FileIndex   int    `json:"fileIndex"`
	StartOffset int64  `json:"startOffset"`
	EndOffset   int64  `json:"endOffset"`
}

// Writer concatenates named byte blobs into a bounded sequence of
// physical files, recording their locations in a directory manifest that
// is written once, at Close. Close is the single commit point: any error
// before it leaves no committed manifest, so a reader never observes a
// partially written container.
type Writer struct {
	dir             string
	maxFileSize     int64
	currentFile     *os.File
	currentFileIdx  int
	currentOffset   int64
	entries         []DirectoryEntry
	closed          bool
	seenNames       map[string]struct{}
}

// NewWriter creates a container writer rooted at dir, rolling to a new
// physical file whenever appending the next blob would exceed
// maxFileSize. dir must already exist.
func NewWriter(dir string, maxFileSize int64) (*Writer, error) {
	if maxFileSize <= 0 {
		maxFileSize = utils.DefaultMaxPhysicalFileSize
	}
	return &Writer{
		dir:            dir,
		maxFileSize:    maxFileSize,
		currentFileIdx: -1,
		seenNames:      make(map[string]struct{}),
	}, nil
}

func physicalFileName(index int) string {
	return fmt.Sprintf(utils.ContainerFileNamePattern, index)
}

// ensureCapacity opens a fresh physical file if none is open yet, or if
// the current file already has data and the incoming blob would not fit
// in what remains of it. A single blob larger than maxFileSize always
// gets its own, oversized file.
func (w *Writer) ensureCapacity(size int64) error {
	needsNewFile := w.currentFile == nil ||
		(w.currentOffset > 0 && w.currentOffset+size > w.maxFileSize)

	if !needsNewFile {
		return nil
	}

	if w.currentFile != nil {
		if err := w.currentFile.Close(); err != nil {
			return errors.ContainerIO("close physical file", err)
		}
	}

	w.currentFileIdx++
	path := filepath.Join(w.dir, physicalFileName(w.currentFileIdx))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.ContainerIO("open physical file", err)
	}

	w.currentFile = f
	w.currentOffset = 0
	return nil
}

// Add writes data under name as a single call, equivalent to
// AddWithSmooshedWriter followed by one Write of the full blob.
func (w *Writer) Add(name string, data []byte) error {
	wc, err := w.AddWithSmooshedWriter(name, int64(len(data)))
	if err != nil {
		return err
	}
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return errors.ContainerIO("write blob", err)
	}
	return wc.Close()
}

// smooshedWriter is returned by AddWithSmooshedWriter; the caller must
// write exactly size bytes to it and then Close it.
type smooshedWriter struct {
	w        *Writer
	name     string
	size     int64
	written  int64
}

func (sw *smooshedWriter) Write(p []byte) (int, error) {
	n, err := sw.w.currentFile.Write(p)
	sw.written += int64(n)
	sw.w.currentOffset += int64(n)
	if err != nil {
		return n, errors.ContainerIO("write blob", err)
	}
	return n, nil
}

func (sw *smooshedWriter) Close() error {
	if sw.written != sw.size {
		return errors.InvalidInput(
			fmt.Sprintf("smooshed writer for %q closed after %d bytes, reserved %d", sw.name, sw.written, sw.size),
			map[string]interface{}{"name": sw.name, "written": sw.written, "reserved": sw.size},
		)
	}
	return nil
}

// AddWithSmooshedWriter reserves size bytes under name and returns a
// writer the caller must write exactly size bytes to before closing.
func (w *Writer) AddWithSmooshedWriter(name string, size int64) (io.WriteCloser, error) {
	if w.closed {
		return nil, errors.InvalidInput("container already closed", map[string]interface{}{"name": name})
	}
	if _, dup := w.seenNames[name]; dup {
		return nil, errors.InvalidInput("duplicate blob name", map[string]interface{}{"name": name})
	}

	if err := w.ensureCapacity(size); err != nil {
		return nil, err
	}

	start := w.currentOffset
	w.seenNames[name] = struct{}{}
	w.entries = append(w.entries, DirectoryEntry{
		Name:        name,
		FileIndex:   w.currentFileIdx,
		StartOffset: start,
		EndOffset:   start + size,
	})

	return &smooshedWriter{w: w, name: name, size: size}, nil
}

// Close writes the directory manifest and closes the current physical
// file. It is the single commit point for the container.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.currentFile != nil {
		if err := w.currentFile.Close(); err != nil {
			return errors.ContainerIO("close physical file", err)
		}
	}

	manifest := struct {
		NumFiles int               `json:"numFiles"`
		Entries  []DirectoryEntry  `json:"entries"`
	}{
		NumFiles: w.currentFileIdx + 1,
		Entries:  w.entries,
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		return errors.ContainerIO("marshal directory manifest", err)
	}

	manifestPath := filepath.Join(w.dir, utils.ContainerDirectoryFileName)
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return errors.ContainerIO("write directory manifest", err)
	}

	logging.Debug("container closed",
		"dir", w.dir,
		"physical_files", w.currentFileIdx+1,
		"blobs", len(w.entries),
	)

	return nil
}

// Abort discards the writer's in-progress physical file without writing
// a manifest, leaving no committed container. Safe to call after Close.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	if w.currentFile != nil {
		_ = w.currentFile.Close()
	}
}
