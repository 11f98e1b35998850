package main

import (
	"github.com/forceu/mamupload/internal/models"
	"github.com/schollz/progressbar/v3"
	"io"
	"sync"
)

// progressDisplay combines the progress of all files into a single progress bar
type progressDisplay struct {
	mutex sync.Mutex
	bar   *progressbar.ProgressBar
	sent  map[int]int64
	total int64
}

func newProgressDisplay(files []models.PendingFile, enabled bool, w io.Writer) *progressDisplay {
	result := &progressDisplay{sent: make(map[int]int64)}
	for _, file := range files {
		result.total += file.Size
	}
	if !enabled {
		return result
	}
	result.bar = progressbar.NewOptions64(result.total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("Uploading..."),
	)
	return result
}

// Update is called by the coordinator for every progress change of a file
func (p *progressDisplay) Update(status models.Progress) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sent[status.FileId] = status.BytesSent
	if p.bar == nil {
		return
	}
	p.bar.Describe("Uploading " + status.Name)
	_ = p.bar.Set64(p.totalSent())
}

// totalSent returns the bytes sent of all files. The mutex must be held
func (p *progressDisplay) totalSent() int64 {
	var result int64
	for _, sent := range p.sent {
		result += sent
	}
	return result
}

// Finish completes the progress bar
func (p *progressDisplay) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
