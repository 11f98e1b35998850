package progress

import (
	"bytes"
	"github.com/forceu/mamupload/internal/models"
	"github.com/forceu/mamupload/internal/test"
	"io"
	"testing"
	"time"
)

func TestReader(t *testing.T) {
	var updates [][2]int64
	content := bytes.Repeat([]byte("a"), 10)
	reader := NewReader(bytes.NewReader(content), 10, func(sent, total int64) {
		updates = append(updates, [2]int64{sent, total})
	})
	buf := make([]byte, 4)
	for {
		_, err := reader.Read(buf)
		if err == io.EOF {
			break
		}
		test.IsNil(t, err)
	}
	test.IsEqualInt64(t, reader.BytesRead(), 10)
	test.IsEqualInt(t, len(updates), 3)
	test.IsEqualInt64(t, updates[0][0], 4)
	test.IsEqualInt64(t, updates[1][0], 8)
	test.IsEqualInt64(t, updates[2][0], 10)
	test.IsEqualInt64(t, updates[2][1], 10)
}

func TestReaderWithoutCallback(t *testing.T) {
	reader := NewReader(bytes.NewReader([]byte("content")), 7, nil)
	output, err := io.ReadAll(reader)
	test.IsNil(t, err)
	test.IsEqualString(t, string(output), "content")
	test.IsEqualInt64(t, reader.BytesRead(), 7)
}

func TestNilLimiter(t *testing.T) {
	limiter := NewLimiter(0)
	test.IsEqualBool(t, limiter == nil, true)
	file := models.PendingFileFromBytes("clip.mov", []byte("content"))
	wrapped := limiter.Wrap(file)
	reader, err := wrapped.Open()
	test.IsNil(t, err)
	output, _ := io.ReadAll(reader)
	test.IsEqualString(t, string(output), "content")
	source := bytes.NewReader(nil)
	test.IsEqualBool(t, limiter.Reader(source) == io.Reader(source), true)
}

func TestLimiter(t *testing.T) {
	limiter := NewLimiter(1000)
	file := models.PendingFileFromBytes("clip.mov", bytes.Repeat([]byte("a"), 1500))
	wrapped := limiter.Wrap(file)
	test.IsEqualInt64(t, wrapped.Size, 1500)
	start := time.Now()
	reader, err := wrapped.Open()
	test.IsNil(t, err)
	output, err := io.ReadAll(reader)
	test.IsNil(t, err)
	test.IsNil(t, reader.Close())
	test.IsEqualInt(t, len(output), 1500)
	// The bucket starts full with 1000 bytes, the remaining 500 take about half a second
	test.IsEqualBool(t, time.Since(start) >= 300*time.Millisecond, true)
}

func TestLimiterOpenError(t *testing.T) {
	limiter := NewLimiter(1000)
	_, err := limiter.Wrap(models.PendingFile{Name: "empty"}).Open()
	test.IsErrorOf(t, err, models.ErrNoContent)
}
