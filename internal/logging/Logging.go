package logging

import (
	"bufio"
	"fmt"
	"github.com/forceu/mamupload/internal/environment"
	"github.com/forceu/mamupload/internal/helper"
	"github.com/forceu/mamupload/internal/models"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var logPath = ""
var mutex sync.Mutex

const categoryInfo = "info"
const categoryUpload = "upload"
const categoryWarning = "warning"

var mirrorToStderr = false

// lastWriteError is the error of the last failed write. Each new error is printed once to stderr
var lastWriteError = ""

// stderr is replaced in tests
var stderr io.Writer = os.Stderr

// Init sets the log file to the log path of env. Until Init is called, no log file is written.
// If MAM_LOG_STDOUT is set, entries are also printed to stderr, so that they do not mix with the output.
// An empty config dir disables the log file.
func Init(env environment.Environment) {
	if env.ConfigDir != "" {
		err := os.MkdirAll(env.ConfigDir, 0770)
		if err != nil {
			reportWriteError(err)
		}
	}
	mutex.Lock()
	defer mutex.Unlock()
	logPath = ""
	if env.ConfigDir != "" {
		logPath = env.GetLogPath()
	}
	mirrorToStderr = env.LogToStdout
	lastWriteError = ""
}

// GetAll returns all log entries as a single string and if the log file could be read
func GetAll(reverse bool) (string, bool) {
	mutex.Lock()
	path := logPath
	mutex.Unlock()
	if path == "" || !helper.FileExists(path) {
		return fmt.Sprintf("[%s] No log file found!", categoryWarning), false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("[%s] Could not read log file: %v", categoryWarning, err), false
	}
	result := string(content)
	if reverse {
		result = reverseLogFile(result)
	}
	return result, true
}

// createLogEntry adds a line to the logfile including the current date. Also outputs to stderr if set.
func createLogEntry(category, text string, blocking bool) {
	output := createLogFormat(category, text)
	mutex.Lock()
	mirror := mirrorToStderr
	mutex.Unlock()
	if mirror {
		_, _ = fmt.Fprintln(stderr, output)
	}
	if blocking {
		writeToFile(output)
	} else {
		go writeToFile(output)
	}
}

func createLogFormat(category, text string) string {
	return fmt.Sprintf("%s   [%s] %s", getDate(), category, text)
}

// LogUploadStart adds a log entry when the transfer of a file begins. Blocking
func LogUploadStart(file models.StagedFile, index int) {
	createLogEntry(categoryUpload, fmt.Sprintf("Starting %s (%s), ID %d, position %d",
		file.Name, formatSize(file.Size), file.Id, index), true)
}

// LogUploadSuccess adds a log entry when a file has been accepted by the endpoint. Blocking
func LogUploadSuccess(result models.UploadResult) {
	text := fmt.Sprintf("Uploaded %s, ID %d, took %s", result.Name, result.FileId, result.Duration.Round(time.Millisecond))
	if result.Location != "" {
		text = text + ", location " + result.Location
	}
	createLogEntry(categoryUpload, text, true)
}

// LogUploadFailed adds a log entry when a file could not be uploaded. Blocking
func LogUploadFailed(err *models.TransferError) {
	createLogEntry(categoryWarning, fmt.Sprintf("Failed %s, ID %d: %v", err.Name, err.FileId, err.Cause), true)
}

// LogUploadCancelled adds a log entry when the upload of a file was aborted or skipped. Blocking
func LogUploadCancelled(file models.StagedFile) {
	createLogEntry(categoryWarning, fmt.Sprintf("Cancelled %s, ID %d", file.Name, file.Id), true)
}

// LogUploadRunFinished adds a summary of a finished upload run. Blocking
func LogUploadRunFinished(report models.UploadReport) {
	createLogEntry(categoryInfo, fmt.Sprintf("Upload run finished: %d uploaded, %d failed, %d cancelled",
		report.SuccessCount(), len(report.Failures()), report.CancelledCount()), true)
}

// LogWarning adds a generic warning. Blocking
func LogWarning(text string) {
	createLogEntry(categoryWarning, text, true)
}

// LogInfo adds a generic info entry. Non-blocking
func LogInfo(text string) {
	createLogEntry(categoryInfo, text, false)
}

type logEntry struct {
	Previous *logEntry
	Next     *logEntry
	Content  string
}

func reverseLogFile(input string) string {
	var reversedLogs strings.Builder
	current := &logEntry{}
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := scanner.Text()
		newEntry := logEntry{
			Content:  line,
			Previous: current,
		}
		current.Next = &newEntry
		current = &newEntry
	}
	for current.Previous != nil {
		reversedLogs.WriteString(current.Content + "\n")
		current = current.Previous
	}
	return reversedLogs.String()
}

// DeleteLogs replaces the log file with a single entry stating that the previous logs were deleted
func DeleteLogs() error {
	mutex.Lock()
	defer mutex.Unlock()
	if logPath == "" {
		return nil
	}
	message := createLogFormat(categoryWarning, "Previous logs deleted\n")
	return os.WriteFile(logPath, []byte(message), 0600)
}

// writeToFile appends text to the log file. A failed write drops the entry, it never stops an upload
func writeToFile(text string) {
	mutex.Lock()
	defer mutex.Unlock()
	if logPath == "" {
		return
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		reportWriteErrorLocked(err)
		return
	}
	defer file.Close()
	_, err = file.WriteString(text + "\n")
	if err != nil {
		reportWriteErrorLocked(err)
	}
}

func reportWriteError(err error) {
	mutex.Lock()
	defer mutex.Unlock()
	reportWriteErrorLocked(err)
}

// reportWriteErrorLocked requires the mutex to be held
func reportWriteErrorLocked(err error) {
	if err.Error() == lastWriteError {
		return
	}
	lastWriteError = err.Error()
	_, _ = fmt.Fprintln(stderr, "Warning: Could not write to log file:", err)
}

// formatSize converts bytes to a human-readable format with binary prefixes
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	value := float64(size)
	for _, prefix := range "kMGTPE" {
		value = value / unit
		if value < unit || prefix == 'E' {
			return fmt.Sprintf("%.1f %cB", value, prefix)
		}
	}
	return ""
}

func getDate() string {
	return time.Now().UTC().Format(time.RFC1123)
}
