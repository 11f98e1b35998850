package main

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/forceu/mamupload/cmd/mam-uploader/cliconfig"
	"github.com/forceu/mamupload/cmd/mam-uploader/cliconstants"
	"github.com/forceu/mamupload/cmd/mam-uploader/cliflags"
	"github.com/forceu/mamupload/internal/encryption"
	"github.com/forceu/mamupload/internal/environment"
	"github.com/forceu/mamupload/internal/models"
	"github.com/forceu/mamupload/internal/test"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// testConfigDir holds the log file of all tests, as the log path is set for the whole package
var testConfigDir string

func TestMain(m *testing.M) {
	var err error
	testConfigDir, err = os.MkdirTemp("", "mam-uploader-test-")
	if err != nil {
		panic(err)
	}
	exitVal := m.Run()
	_ = os.RemoveAll(testConfigDir)
	os.Exit(exitVal)
}

type receivedFile struct {
	Name      string
	Content   []byte
	Encrypted string
}

func startServer(t *testing.T, statusCode int) (*httptest.Server, func() []receivedFile) {
	t.Helper()
	var mutex sync.Mutex
	var received []receivedFile
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if statusCode != http.StatusOK {
			w.WriteHeader(statusCode)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		content, _ := io.ReadAll(file)
		file.Close()
		mutex.Lock()
		received = append(received, receivedFile{
			Name:      header.Filename,
			Content:   content,
			Encrypted: r.FormValue(encryption.MetadataKey),
		})
		mutex.Unlock()
		_, _ = w.Write([]byte(`{"result":"OK"}`))
	}))
	t.Cleanup(server.Close)
	return server, func() []receivedFile {
		mutex.Lock()
		defer mutex.Unlock()
		return received
	}
}

func createTestFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	test.IsNil(t, os.MkdirAll(filepath.Join(dir, "clips"), 0770))
	test.IsNil(t, os.WriteFile(filepath.Join(dir, "clips", "intro.mov"), []byte("intro content"), 0600))
	test.IsNil(t, os.WriteFile(filepath.Join(dir, "clips", "outro.mov"), []byte("outro content"), 0600))
	test.IsNil(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("cover content"), 0600))
	test.IsNil(t, os.WriteFile(filepath.Join(dir, "upload.yml"), []byte("files:\n  - path: cover.jpg\n    metadata: {title: Cover}\n"), 0600))
	return dir
}

func getTestEnv(url string) environment.Environment {
	return environment.Environment{
		ConfigDir:          testConfigDir,
		UploadUrl:          url,
		FormField:          "file",
		MaxParallelUploads: 1,
	}
}

func TestCollectFiles(t *testing.T) {
	dir := createTestFiles(t)
	files, err := collectFiles(cliflags.UploadConfig{
		Files:     []string{filepath.Join(dir, "cover.jpg")},
		Directory: filepath.Join(dir, "clips"),
		Manifest:  filepath.Join(dir, "upload.yml"),
	})
	test.IsNil(t, err)
	test.IsEqualInt(t, len(files), 4)
	test.IsEqualString(t, files[0].Name, "cover.jpg")
	test.IsEqualString(t, files[1].Name, "intro.mov")
	test.IsEqualString(t, files[2].Name, "outro.mov")
	test.IsEqualString(t, files[3].Metadata["title"], "Cover")

	_, err = collectFiles(cliflags.UploadConfig{Files: []string{filepath.Join(dir, "missing")}})
	test.IsNotNil(t, err)
	_, err = collectFiles(cliflags.UploadConfig{Directory: t.TempDir()})
	test.IsNotNil(t, err)
}

func TestPrepareFiles(t *testing.T) {
	files := []models.PendingFile{models.PendingFileFromBytes("a.txt", []byte("content"))}
	result, err := prepareFiles(files, cliflags.UploadConfig{LimitKb: 10})
	test.IsNil(t, err)
	test.IsEqualInt64(t, result[0].Size, 7)

	result, err = prepareFiles(files, cliflags.UploadConfig{Passphrase: "secret"})
	test.IsNil(t, err)
	test.IsEqualInt64(t, result[0].Size, encryption.CalculateEncryptedFilesize(7))
	test.IsEqualString(t, result[0].Metadata[encryption.MetadataKey], encryption.MetadataValue)
}

func TestProcessUpload(t *testing.T) {
	server, received := startServer(t, http.StatusOK)
	dir := createTestFiles(t)
	env := getTestEnv(server.URL)
	code := processUpload(env, cliflags.UploadConfig{
		Directory:   filepath.Join(dir, "clips"),
		MaxParallel: 2,
		JsonOutput:  true,
	}, filepath.Join(env.ConfigDir, cliconstants.DefaultConfigFileName))
	test.IsEqualInt(t, code, 0)
	files := received()
	test.IsEqualInt(t, len(files), 2)
	for _, file := range files {
		test.Contains(t, string(file.Content), "content")
		test.IsEqualString(t, file.Encrypted, "")
	}
	test.FileExists(t, filepath.Join(env.ConfigDir, "mam-uploader.log"))
}

func TestProcessUploadEncrypted(t *testing.T) {
	server, received := startServer(t, http.StatusOK)
	dir := createTestFiles(t)
	env := getTestEnv(server.URL)
	code := processUpload(env, cliflags.UploadConfig{
		Files:       []string{filepath.Join(dir, "cover.jpg")},
		MaxParallel: 1,
		Passphrase:  "secret",
	}, filepath.Join(env.ConfigDir, cliconstants.DefaultConfigFileName))
	test.IsEqualInt(t, code, 0)
	files := received()
	test.IsEqualInt(t, len(files), 1)
	test.IsEqualString(t, files[0].Encrypted, encryption.MetadataValue)
	reader, err := encryption.DecryptReader(bytes.NewReader(files[0].Content), "secret")
	test.IsNil(t, err)
	plain, err := io.ReadAll(reader)
	test.IsNil(t, err)
	test.IsEqualString(t, string(plain), "cover content")
}

func TestProcessUploadFailed(t *testing.T) {
	server, _ := startServer(t, http.StatusUnauthorized)
	dir := createTestFiles(t)
	env := getTestEnv(server.URL)
	code := processUpload(env, cliflags.UploadConfig{
		Files:       []string{filepath.Join(dir, "cover.jpg")},
		MaxParallel: 1,
	}, filepath.Join(env.ConfigDir, cliconstants.DefaultConfigFileName))
	test.IsEqualInt(t, code, cliconstants.ExitCodeUploadFailed)
}

func TestProcessUploadNoLogin(t *testing.T) {
	dir := createTestFiles(t)
	env := getTestEnv("")
	code := processUpload(env, cliflags.UploadConfig{
		Files:       []string{filepath.Join(dir, "cover.jpg")},
		MaxParallel: 1,
	}, filepath.Join(env.ConfigDir, cliconstants.DefaultConfigFileName))
	test.IsEqualInt(t, code, cliconstants.ExitCodeConfigError)

	server, received := startServer(t, http.StatusOK)
	loginPath := filepath.Join(t.TempDir(), "login.json")
	test.IsNil(t, cliconfig.Save(loginPath, cliconfig.Login{Url: server.URL}))
	code = processUpload(env, cliflags.UploadConfig{
		Files:       []string{filepath.Join(dir, "cover.jpg")},
		MaxParallel: 1,
	}, loginPath)
	test.IsEqualInt(t, code, 0)
	test.IsEqualInt(t, len(received()), 1)
}

func TestPrintJson(t *testing.T) {
	report := models.UploadReport{Results: []models.UploadResult{
		{FileId: 1, Name: "a.mov", Size: 10, Status: models.UploadSuccess, StatusCode: 200},
		{FileId: 2, Index: 1, Name: "b.mov", Status: models.UploadFailed, Err: &models.TransferError{Name: "b.mov", Cause: io.ErrUnexpectedEOF}},
	}}
	var output bytes.Buffer
	test.IsNil(t, printJson(&output, report))
	var decoded []models.UploadResultOutput
	test.IsNil(t, json.Unmarshal(output.Bytes(), &decoded))
	test.IsEqualInt(t, len(decoded), 2)
	test.IsEqualString(t, decoded[0].Status, "success")
	test.IsEqualString(t, decoded[1].Status, "failed")
	test.Contains(t, decoded[1].Error, "unexpected EOF")
}

func TestPrintReport(t *testing.T) {
	report := models.UploadReport{Results: []models.UploadResult{
		{Name: "a.mov", Status: models.UploadSuccess, Location: "/assets/1"},
		{Name: "b.mov", Status: models.UploadFailed, Err: &models.TransferError{Name: "b.mov", Cause: io.ErrUnexpectedEOF}},
		{Name: "c.mov", Status: models.UploadCancelled},
	}}
	var output bytes.Buffer
	printReport(&output, report)
	lines := strings.Split(output.String(), "\n")
	test.IsEqualString(t, lines[0], "OK         a.mov -> /assets/1")
	test.IsEqualString(t, lines[1], "FAILED     b.mov: unexpected EOF")
	test.IsEqualString(t, lines[2], "CANCELLED  c.mov")
	test.Contains(t, output.String(), "Uploaded 1 of 3 files")
}

func TestExitCode(t *testing.T) {
	success := models.UploadReport{Results: []models.UploadResult{{Status: models.UploadSuccess}}}
	failed := models.UploadReport{Results: []models.UploadResult{{Status: models.UploadFailed, Err: &models.TransferError{Cause: io.EOF}}}}
	cancelled := models.UploadReport{Results: []models.UploadResult{{Status: models.UploadCancelled}}}
	test.IsEqualInt(t, exitCode(context.Background(), success), 0)
	test.IsEqualInt(t, exitCode(context.Background(), failed), cliconstants.ExitCodeUploadFailed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.IsEqualInt(t, exitCode(ctx, cancelled), cliconstants.ExitCodeCancelled)
}

func TestProgressDisplay(t *testing.T) {
	files := []models.PendingFile{
		models.PendingFileFromBytes("a", make([]byte, 100)),
		models.PendingFileFromBytes("b", make([]byte, 50)),
	}
	var output bytes.Buffer
	display := newProgressDisplay(files, true, &output)
	test.IsEqualInt64(t, display.total, 150)
	display.Update(models.Progress{FileId: 1, Name: "a", BytesSent: 100, TotalBytes: 100})
	display.Update(models.Progress{FileId: 2, Name: "b", BytesSent: 20, TotalBytes: 50})
	display.Update(models.Progress{FileId: 2, Name: "b", BytesSent: 50, TotalBytes: 50})
	test.IsEqualInt64(t, display.totalSent(), 150)
	display.Finish()

	display = newProgressDisplay(files, false, &output)
	display.Update(models.Progress{FileId: 1, BytesSent: 10})
	test.IsEqualInt64(t, display.totalSent(), 10)
	display.Finish()
}
