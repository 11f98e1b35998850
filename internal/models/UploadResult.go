package models

import (
	"errors"
	"fmt"
	"github.com/jinzhu/copier"
	"time"
)

// UploadStatus is the outcome of a single file upload
type UploadStatus string

const (
	// UploadSuccess is set if the upload endpoint accepted the file
	UploadSuccess UploadStatus = "success"
	// UploadFailed is set if the transfer failed or the endpoint rejected the file
	UploadFailed UploadStatus = "failed"
	// UploadCancelled is set if the upload was aborted or never started due to cancellation
	UploadCancelled UploadStatus = "cancelled"
)

// TransferResponse is returned by a transfer primitive after the file has been accepted
type TransferResponse struct {
	StatusCode int
	Body       string
	// Location is where the file can be found afterwards, if known
	Location string
}

// UploadResult contains the outcome for one staged file of an upload run
type UploadResult struct {
	FileId     int
	Index      int
	Name       string
	Size       int64
	Status     UploadStatus
	Err        error
	StatusCode int
	Response   string
	Location   string
	Duration   time.Duration
}

// UploadResultOutput is the JSON representation of an UploadResult
type UploadResultOutput struct {
	FileId     int    `json:"FileId"`
	Index      int    `json:"Index"`
	Name       string `json:"Name"`
	Size       int64  `json:"Size"`
	Status     string `json:"Status" copier:"-"`
	Error      string `json:"Error,omitempty"`
	StatusCode int    `json:"StatusCode,omitempty"`
	Response   string `json:"Response,omitempty"`
	Location   string `json:"Location,omitempty"`
	DurationMs int64  `json:"DurationMs"`
}

// IsSuccess returns true if the file was uploaded
func (r UploadResult) IsSuccess() bool {
	return r.Status == UploadSuccess
}

// ToJsonOutput returns the result in a form that can be marshalled
func (r UploadResult) ToJsonOutput() (UploadResultOutput, error) {
	var result UploadResultOutput
	err := copier.Copy(&result, &r)
	if err != nil {
		return UploadResultOutput{}, err
	}
	result.Status = string(r.Status)
	if r.Err != nil {
		result.Error = r.Err.Error()
	}
	result.DurationMs = r.Duration.Milliseconds()
	return result, nil
}

// TransferError is the error recorded for a file that could not be uploaded
type TransferError struct {
	Index  int
	FileId int
	Name   string
	Cause  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("upload of %s (file #%d at index %d) failed: %v", e.Name, e.FileId, e.Index, e.Cause)
}

// Unwrap returns the underlying cause
func (e *TransferError) Unwrap() error {
	return e.Cause
}

// UploadReport contains one result per file, in the order the files were staged
type UploadReport struct {
	Results []UploadResult
}

// Failures returns the errors of all files that failed. Cancelled files are not included
func (r UploadReport) Failures() []*TransferError {
	result := make([]*TransferError, 0)
	for _, upload := range r.Results {
		if upload.Status != UploadFailed {
			continue
		}
		var transferErr *TransferError
		if errors.As(upload.Err, &transferErr) {
			result = append(result, transferErr)
		}
	}
	return result
}

// SuccessCount returns the amount of files that were uploaded
func (r UploadReport) SuccessCount() int {
	return r.countStatus(UploadSuccess)
}

// CancelledCount returns the amount of files that were cancelled
func (r UploadReport) CancelledCount() int {
	return r.countStatus(UploadCancelled)
}

func (r UploadReport) countStatus(status UploadStatus) int {
	count := 0
	for _, upload := range r.Results {
		if upload.Status == status {
			count++
		}
	}
	return count
}

// Err returns all errors of the run joined together, or nil if every file was uploaded
func (r UploadReport) Err() error {
	var errs []error
	for _, upload := range r.Results {
		if upload.Err != nil {
			errs = append(errs, upload.Err)
		}
	}
	return errors.Join(errs...)
}
