// Package s3upload stores single files in an S3 compatible bucket
package s3upload

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/forceu/mamupload/internal/models"
	"github.com/forceu/mamupload/internal/progress"
	"github.com/forceu/mamupload/internal/transfer"
	"net/http"
)

// ErrIncompleteConfig is returned if bucket, region or credentials are missing
var ErrIncompleteConfig = errors.New("incomplete AWS configuration")

// lengthKeyId is the length of the random folder every object is placed in
const lengthKeyId = 12

// newKeyId returns lengthKeyId random hex characters
func newKeyId() (string, error) {
	buf := make([]byte, lengthKeyId/2)
	_, err := cryptorand.Read(buf)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// uploaderApi is implemented by manager.Uploader
type uploaderApi interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Uploader puts one object per file into a bucket
type Uploader struct {
	api    uploaderApi
	bucket string
	prefix string
}

// New creates an Uploader with static credentials. If config.Endpoint is set, it is used instead of AWS
func New(ctx context.Context, config models.AwsConfig) (*Uploader, error) {
	client, err := newClient(ctx, config)
	if err != nil {
		return nil, err
	}
	return newWithApi(manager.NewUploader(client), config), nil
}

func newClient(ctx context.Context, config models.AwsConfig) (*s3.Client, error) {
	if !config.IsAllProvided() {
		return nil, ErrIncompleteConfig
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(config.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.KeyId, config.KeySecret, "")),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	}), nil
}

func newWithApi(api uploaderApi, config models.AwsConfig) *Uploader {
	return &Uploader{
		api:    api,
		bucket: config.Bucket,
		prefix: config.KeyPrefix(),
	}
}

// Transfer uploads file to <prefix><random id>/<name>, so that files with the same name do not replace each other
func (u *Uploader) Transfer(ctx context.Context, file models.StagedFile, onProgress progress.Func) (models.TransferResponse, error) {
	keyId, err := newKeyId()
	if err != nil {
		return models.TransferResponse{}, err
	}
	source, err := transfer.Open(file, onProgress)
	if err != nil {
		return models.TransferResponse{}, err
	}
	defer source.Close()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(u.prefix + keyId + "/" + file.Name),
		Body:        source.Reader,
		ContentType: aws.String(source.ContentType),
	}
	if len(file.Metadata) > 0 {
		input.Metadata = file.Metadata
	}
	output, err := u.api.Upload(ctx, input)
	if err != nil {
		return models.TransferResponse{}, err
	}
	return models.TransferResponse{
		StatusCode: http.StatusOK,
		Body:       aws.ToString(output.ETag),
		Location:   output.Location,
	}, nil
}
