// Package httpupload sends single files to an upload endpoint as multipart/form-data POST requests
package httpupload

import (
	"context"
	"errors"
	"fmt"
	"github.com/forceu/mamupload/internal/logging"
	"github.com/forceu/mamupload/internal/models"
	"github.com/forceu/mamupload/internal/progress"
	"github.com/forceu/mamupload/internal/transfer"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultFieldName is the form field containing the file
const DefaultFieldName = "file"

const maxResponseSize = 1024 * 1024

// ErrUnauthorised is matched by a StatusError if the endpoint rejected the API key
var ErrUnauthorised = errors.New("unauthorised")

// StatusError is returned if the endpoint answered with a status code other than 2xx
type StatusError struct {
	StatusCode int
	Response   string
}

func (e *StatusError) Error() string {
	return "failed to upload file: status code " + strconv.Itoa(e.StatusCode) + ", response: " + e.Response
}

// Is returns true for ErrUnauthorised if the status code is 401
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorised && e.StatusCode == http.StatusUnauthorized
}

// Uploader posts one file per request to a fixed url
type Uploader struct {
	url       string
	apiKey    string
	fieldName string
	client    *http.Client
}

// Option configures an Uploader
type Option func(u *Uploader)

// WithApiKey sends key in the apikey header of every request
func WithApiKey(key string) Option {
	return func(u *Uploader) {
		u.apiKey = key
	}
}

// WithFieldName sets the form field name of the file part
func WithFieldName(name string) Option {
	return func(u *Uploader) {
		if name != "" {
			u.fieldName = name
		}
	}
}

// WithTimeout limits the duration of a single request. A timeout of 0 disables the limit
func WithTimeout(timeout time.Duration) Option {
	return func(u *Uploader) {
		u.client.Timeout = timeout
	}
}

// WithHttpClient replaces the http client, e.g. for custom TLS settings
func WithHttpClient(client *http.Client) Option {
	return func(u *Uploader) {
		u.client = client
	}
}

// New returns an Uploader posting to url
func New(url string, options ...Option) *Uploader {
	result := &Uploader{
		url:       url,
		fieldName: DefaultFieldName,
		client:    &http.Client{},
	}
	for _, option := range options {
		option(result)
	}
	return result
}

// Url returns the url files are posted to
func (u *Uploader) Url() string {
	return u.url
}

// Transfer uploads file in a single request. onProgress is called with the amount of file bytes
// consumed by the http client so far. Any 2xx status is a success.
func (u *Uploader) Transfer(ctx context.Context, file models.StagedFile, onProgress progress.Func) (models.TransferResponse, error) {
	source, err := transfer.Open(file, onProgress)
	if err != nil {
		return models.TransferResponse{}, err
	}
	defer source.Close()

	bodyReader, bodyWriter := io.Pipe()
	writer := multipart.NewWriter(bodyWriter)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bodyWriter.CloseWithError(writeBody(writer, u.fieldName, file.PendingFile, source))
	}()
	// Unblocks the writer if the request ends before the body has been read completely
	defer func() {
		_ = bodyReader.Close()
		<-done
	}()

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bodyReader)
	if err != nil {
		return models.TransferResponse{}, err
	}
	r.Header.Set("Content-Type", writer.FormDataContentType())
	if u.apiKey != "" {
		r.Header.Set("apikey", u.apiKey)
	}
	resp, err := u.client.Do(r)
	if err != nil {
		return models.TransferResponse{}, err
	}
	defer resp.Body.Close()

	bodyContent, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return models.TransferResponse{}, err
	}
	response := string(bodyContent)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.TransferResponse{}, &StatusError{
			StatusCode: resp.StatusCode,
			Response:   response,
		}
	}
	return models.TransferResponse{
		StatusCode: resp.StatusCode,
		Body:       response,
		Location:   resp.Header.Get("Location"),
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeBody(writer *multipart.Writer, fieldName string, file models.PendingFile, source *transfer.Source) error {
	keys := make([]string, 0, len(file.Metadata))
	for key := range file.Metadata {
		if key == fieldName {
			logging.LogWarning(fmt.Sprintf("Metadata %q of %s skipped, as it is the name of the file field", key, file.Name))
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		err := writer.WriteField(key, file.Metadata[key])
		if err != nil {
			return err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fieldName), quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", source.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, source.Reader)
	if err != nil {
		return err
	}
	return writer.Close()
}
