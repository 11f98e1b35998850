package progress

import (
	"github.com/forceu/mamupload/internal/models"
	"github.com/juju/ratelimit"
	"io"
	"sync/atomic"
)

// Func is called with the amount of bytes read so far and the expected total
type Func func(sent, total int64)

// Reader counts the bytes read from the underlying reader and reports them to a Func
type Reader struct {
	reader   io.Reader
	total    int64
	sent     atomic.Int64
	callback Func
}

// NewReader wraps r. callback may be nil
func NewReader(r io.Reader, total int64, callback Func) *Reader {
	return &Reader{
		reader:   r,
		total:    total,
		callback: callback,
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		sent := r.sent.Add(int64(n))
		if r.callback != nil {
			r.callback(sent, r.total)
		}
	}
	return n, err
}

// BytesRead returns the amount of bytes read so far
func (r *Reader) BytesRead() int64 {
	return r.sent.Load()
}

// Limiter restricts the combined read rate of all files it has wrapped
type Limiter struct {
	bucket *ratelimit.Bucket
}

// NewLimiter returns a limiter allowing bytesPerSecond. Returns nil if bytesPerSecond is not positive,
// which is a valid limiter that does not restrict anything
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	return &Limiter{
		bucket: ratelimit.NewBucketWithRate(float64(bytesPerSecond), bytesPerSecond),
	}
}

// Reader returns r with the read rate limited
func (l *Limiter) Reader(r io.Reader) io.Reader {
	if l == nil {
		return r
	}
	return ratelimit.Reader(r, l.bucket)
}

// Wrap returns a copy of file whose content is read through the limiter
func (l *Limiter) Wrap(file models.PendingFile) models.PendingFile {
	if l == nil {
		return file
	}
	return file.WithContent(file.Size, func() (io.ReadCloser, error) {
		reader, err := file.Open()
		if err != nil {
			return nil, err
		}
		return &limitedReadCloser{
			Reader: l.Reader(reader),
			Closer: reader,
		}, nil
	})
}

type limitedReadCloser struct {
	io.Reader
	io.Closer
}
