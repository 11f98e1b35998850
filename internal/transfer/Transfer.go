// Package transfer contains the parts shared by all transfer primitives
package transfer

import (
	"bufio"
	"errors"
	"github.com/forceu/mamupload/internal/models"
	"github.com/forceu/mamupload/internal/progress"
	"github.com/gabriel-vasile/mimetype"
	"io"
)

// sniffLength is the amount of bytes mimetype inspects by default
const sniffLength = 3072

// Source is the content of a staged file, prepared for a transfer
type Source struct {
	// Reader returns the file content and reports every read to the progress callback
	Reader      *progress.Reader
	ContentType string
	closer      io.Closer
}

// Open opens file and detects its content type. onProgress may be nil.
// Close must be called after the transfer.
func Open(file models.StagedFile, onProgress progress.Func) (*Source, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	buffered := bufio.NewReaderSize(reader, sniffLength)
	head, err := buffered.Peek(sniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		_ = reader.Close()
		return nil, err
	}
	return &Source{
		Reader:      progress.NewReader(buffered, file.Size, onProgress),
		ContentType: mimetype.Detect(head).String(),
		closer:      reader,
	}, nil
}

// Close closes the underlying file
func (s *Source) Close() error {
	return s.closer.Close()
}
