package models

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNoContent is returned when a PendingFile has no way of opening its content
var ErrNoContent = errors.New("file has no content source")

// PendingFile is a file staged by the user for upload, not yet transferred.
// The content is opaque and is read through Open, which returns a fresh reader on every call.
type PendingFile struct {
	Name string
	Size int64
	// Metadata is sent along with the file, as form fields or object metadata
	Metadata map[string]string
	open     func() (io.ReadCloser, error)
}

// StagedFile is a PendingFile together with the identifier the coordinator assigned to it.
// The Id never changes, even if files staged before it are removed.
type StagedFile struct {
	Id int
	PendingFile
}

// NewPendingFile creates a PendingFile that reads its content from open
func NewPendingFile(name string, size int64, open func() (io.ReadCloser, error)) PendingFile {
	return PendingFile{
		Name: name,
		Size: size,
		open: open,
	}
}

// PendingFileFromBytes creates a PendingFile with the given content
func PendingFileFromBytes(name string, content []byte) PendingFile {
	return NewPendingFile(name, int64(len(content)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	})
}

// PendingFileFromPath creates a PendingFile for a file on the local filesystem
func PendingFileFromPath(path string) (PendingFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return PendingFile{}, err
	}
	if !info.Mode().IsRegular() {
		return PendingFile{}, errors.New(path + " is not a regular file")
	}
	return NewPendingFile(filepath.Base(path), info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// PendingFilesFromDir returns all regular files below dir in lexical order.
// The name of each file is its slash separated path relative to dir.
func PendingFilesFromDir(dir string) ([]PendingFile, error) {
	result := make([]PendingFile, 0)
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		file, err := PendingFileFromPath(path)
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		file.Name = filepath.ToSlash(relPath)
		result = append(result, file)
		return nil
	})
	return result, err
}

// Open returns a new reader for the content of the file
func (f PendingFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, ErrNoContent
	}
	return f.open()
}

// WithContent returns a copy of the file that reads its content from open instead.
// Used to wrap the content stream, e.g. for encryption or throttling.
func (f PendingFile) WithContent(size int64, open func() (io.ReadCloser, error)) PendingFile {
	f.Size = size
	f.open = open
	return f
}

// WithMetadata returns a copy of the file with the given metadata
func (f PendingFile) WithMetadata(metadata map[string]string) PendingFile {
	f.Metadata = metadata
	return f
}
