// Package coordinator keeps the ordered list of files staged for upload and drives their transfer
package coordinator

import (
	"context"
	"errors"
	"github.com/forceu/mamupload/internal/logging"
	"github.com/forceu/mamupload/internal/models"
	"github.com/forceu/mamupload/internal/progress"
	"golang.org/x/sync/errgroup"
	"sync"
	"time"
)

// ErrUploadInProgress is returned if UploadAll is called while another upload run has not finished yet
var ErrUploadInProgress = errors.New("an upload is already in progress")

// Transferer moves the content of a single file to its destination.
// onProgress must be called with the amount of bytes that have been transferred so far.
type Transferer interface {
	Transfer(ctx context.Context, file models.StagedFile, onProgress progress.Func) (models.TransferResponse, error)
}

// Coordinator holds the files staged for upload and their progress. It is safe for concurrent use.
type Coordinator struct {
	transferer  Transferer
	maxParallel int
	listener    func(models.Progress)

	mutex       sync.Mutex
	files       []models.StagedFile
	progress    map[int]int
	lastId      int
	isUploading bool
}

// Option configures a Coordinator
type Option func(c *Coordinator)

// WithMaxParallel allows up to n transfers at the same time. The default of 1 uploads strictly sequentially
func WithMaxParallel(n int) Option {
	return func(c *Coordinator) {
		if n < 1 {
			n = 1
		}
		c.maxParallel = n
	}
}

// WithProgressListener calls listener for every progress update of a staged file.
// The listener is called from the goroutine running the transfer and must not block.
func WithProgressListener(listener func(models.Progress)) Option {
	return func(c *Coordinator) {
		c.listener = listener
	}
}

// New returns an empty Coordinator that uploads with transferer
func New(transferer Transferer, options ...Option) *Coordinator {
	result := &Coordinator{
		transferer:  transferer,
		maxParallel: 1,
		progress:    make(map[int]int),
	}
	for _, option := range options {
		option(result)
	}
	return result
}

// AddFiles appends files to the end of the list and returns the ids assigned to them.
// Files are not deduplicated, adding the same file twice stages it twice.
func (c *Coordinator) AddFiles(files ...models.PendingFile) []int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ids := make([]int, 0, len(files))
	for _, file := range files {
		c.lastId++
		c.files = append(c.files, models.StagedFile{
			Id:          c.lastId,
			PendingFile: file,
		})
		ids = append(ids, c.lastId)
	}
	return ids
}

// RemoveFile removes the file at index together with its progress. All following files move up by one.
// Returns false and does nothing if index is out of range.
func (c *Coordinator) RemoveFile(index int) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if index < 0 || index >= len(c.files) {
		return false
	}
	c.removeAt(index)
	return true
}

// RemoveById removes the file with the given id together with its progress.
// Returns false if no such file is staged.
func (c *Coordinator) RemoveById(id int) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	index := c.indexOf(id)
	if index == -1 {
		return false
	}
	c.removeAt(index)
	return true
}

func (c *Coordinator) removeAt(index int) {
	delete(c.progress, c.files[index].Id)
	c.files = append(c.files[:index:index], c.files[index+1:]...)
}

// Clear removes all files and their progress
func (c *Coordinator) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.files = nil
	c.progress = make(map[int]int)
}

// Files returns a copy of the staged files in their current order
func (c *Coordinator) Files() []models.StagedFile {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	result := make([]models.StagedFile, len(c.files))
	copy(result, c.files)
	return result
}

// Len returns the amount of staged files
func (c *Coordinator) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.files)
}

// Progress returns a copy of the progress in percent, keyed by file id.
// Files without any reported progress yet have no entry.
func (c *Coordinator) Progress() map[int]int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	result := make(map[int]int, len(c.progress))
	for id, percent := range c.progress {
		result[id] = percent
	}
	return result
}

// ProgressOf returns the progress of a single file and if there is any
func (c *Coordinator) ProgressOf(id int) (int, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	percent, ok := c.progress[id]
	return percent, ok
}

// ProgressByIndex returns the progress keyed by the current position of each file
func (c *Coordinator) ProgressByIndex() map[int]int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	result := make(map[int]int, len(c.progress))
	for index, file := range c.files {
		percent, ok := c.progress[file.Id]
		if ok {
			result[index] = percent
		}
	}
	return result
}

// IsUploading returns true while UploadAll is running
func (c *Coordinator) IsUploading() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isUploading
}

// UploadAll transfers every file that is staged when it is called, in order. By default each transfer
// finishes before the next one begins. A failed file does not stop the remaining ones; the outcome of
// every file is part of the returned report. Once ctx is cancelled, the running transfer is aborted and
// files that have not been started are reported as cancelled.
// Files removed during the run are still uploaded, but their progress is no longer tracked.
func (c *Coordinator) UploadAll(ctx context.Context) (models.UploadReport, error) {
	c.mutex.Lock()
	if c.isUploading {
		c.mutex.Unlock()
		return models.UploadReport{}, ErrUploadInProgress
	}
	c.isUploading = true
	queue := make([]models.StagedFile, len(c.files))
	copy(queue, c.files)
	c.mutex.Unlock()

	defer func() {
		c.mutex.Lock()
		c.isUploading = false
		c.mutex.Unlock()
	}()

	results := make([]models.UploadResult, len(queue))
	if c.maxParallel == 1 {
		for i, file := range queue {
			results[i] = c.uploadFile(ctx, i, file)
		}
	} else {
		var group errgroup.Group
		group.SetLimit(c.maxParallel)
		for i, file := range queue {
			group.Go(func() error {
				results[i] = c.uploadFile(ctx, i, file)
				return nil
			})
		}
		_ = group.Wait()
	}

	report := models.UploadReport{Results: results}
	if len(queue) > 0 {
		logging.LogUploadRunFinished(report)
	}
	return report, nil
}

func (c *Coordinator) uploadFile(ctx context.Context, index int, file models.StagedFile) models.UploadResult {
	result := models.UploadResult{
		FileId: file.Id,
		Index:  index,
		Name:   file.Name,
		Size:   file.Size,
	}
	if ctx.Err() != nil {
		result.Status = models.UploadCancelled
		result.Err = newTransferError(index, file, ctx.Err())
		logging.LogUploadCancelled(file)
		return result
	}

	logging.LogUploadStart(file, index)
	start := time.Now()
	response, err := c.transferer.Transfer(ctx, file, func(sent, total int64) {
		c.updateProgress(file, sent, total)
	})
	result.Duration = time.Since(start)
	if err != nil {
		transferErr := newTransferError(index, file, err)
		result.Err = transferErr
		if ctx.Err() != nil {
			result.Status = models.UploadCancelled
			logging.LogUploadCancelled(file)
		} else {
			result.Status = models.UploadFailed
			logging.LogUploadFailed(transferErr)
		}
		return result
	}

	result.Status = models.UploadSuccess
	result.StatusCode = response.StatusCode
	result.Response = response.Body
	result.Location = response.Location
	c.completeProgress(file)
	logging.LogUploadSuccess(result)
	return result
}

func newTransferError(index int, file models.StagedFile, cause error) *models.TransferError {
	return &models.TransferError{
		Index:  index,
		FileId: file.Id,
		Name:   file.Name,
		Cause:  cause,
	}
}

func (c *Coordinator) updateProgress(file models.StagedFile, sent, total int64) {
	c.setProgress(file, sent, total, models.CalculatePercent(sent, total))
}

// completeProgress is required for files without content, as they never report any transferred bytes
func (c *Coordinator) completeProgress(file models.StagedFile) {
	if percent, ok := c.ProgressOf(file.Id); ok && percent == 100 {
		return
	}
	c.setProgress(file, file.Size, file.Size, 100)
}

func (c *Coordinator) setProgress(file models.StagedFile, sent, total int64, percent int) {
	c.mutex.Lock()
	index := c.indexOf(file.Id)
	if index == -1 {
		c.mutex.Unlock()
		return
	}
	c.progress[file.Id] = percent
	c.mutex.Unlock()

	if c.listener != nil {
		c.listener(models.Progress{
			FileId:     file.Id,
			Index:      index,
			Name:       file.Name,
			BytesSent:  sent,
			TotalBytes: total,
			Percent:    percent,
		})
	}
}

// indexOf returns the current position of the file or -1. The mutex must be held
func (c *Coordinator) indexOf(id int) int {
	for i, file := range c.files {
		if file.Id == id {
			return i
		}
	}
	return -1
}
