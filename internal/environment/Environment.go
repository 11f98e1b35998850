package environment

import (
	"fmt"
	envParser "github.com/caarlos0/env/v6"
	"github.com/forceu/mamupload/internal/models"
	"os"
	"path"
	"strings"
)

// DefaultUploadUrl is suggested when creating a login
const DefaultUploadUrl = "http://localhost:8080/api/v1/upload"

// Environment is a struct containing available env variables
type Environment struct {
	ConfigDir          string `env:"CONFIG_DIR" envDefault:"."`
	ConfigFile         string `env:"CONFIG_FILE" envDefault:"mam-uploader.json"`
	ConfigPath         string
	UploadUrl          string `env:"UPLOAD_URL"`
	ApiKey             string `env:"API_KEY"`
	FormField          string `env:"FORM_FIELD" envDefault:"file"`
	MaxParallelUploads int    `env:"MAX_PARALLEL_UPLOADS" envDefault:"1"`
	RateLimitKb        int    `env:"RATE_LIMIT_KB" envDefault:"0"`
	RequestTimeout     int    `env:"REQUEST_TIMEOUT" envDefault:"0"` // in seconds, 0 == no timeout
	LogToStdout        bool   `env:"LOG_STDOUT" envDefault:"false"`
	AwsBucket          string `env:"AWS_BUCKET"`
	AwsRegion          string `env:"AWS_REGION"`
	AwsKeyId           string `env:"AWS_KEY"`
	AwsKeySecret       string `env:"AWS_KEY_SECRET"`
	AwsEndpoint        string `env:"AWS_ENDPOINT"`
	AwsPrefix          string `env:"AWS_PREFIX"`
}

// New parses the env variables
func New() Environment {
	result := Environment{}
	err := envParser.Parse(&result, envParser.Options{
		Prefix: "MAM_",
	})
	if err != nil {
		fmt.Println("Error parsing env variables:", err)
		osExit(1)
		return Environment{}
	}

	result.ConfigDir = path.Clean(result.ConfigDir)
	result.ConfigPath = result.ConfigDir + "/" + result.ConfigFile
	result.UploadUrl = strings.TrimSpace(result.UploadUrl)
	if result.FormField == "" {
		result.FormField = "file"
	}
	if result.MaxParallelUploads < 1 {
		result.MaxParallelUploads = 1
	}
	if result.RateLimitKb < 0 {
		result.RateLimitKb = 0
	}
	if result.RequestTimeout < 0 {
		result.RequestTimeout = 0
	}
	return result
}

// IsAwsProvided returns true if all required env variables have been set for using AWS S3 / Backblaze
func (e *Environment) IsAwsProvided() bool {
	return e.AwsBucket != "" &&
		e.AwsRegion != "" &&
		e.AwsKeyId != "" &&
		e.AwsKeySecret != ""
}

// GetAwsConfig returns the AWS settings that have been passed as env variables
func (e *Environment) GetAwsConfig() models.AwsConfig {
	return models.AwsConfig{
		Bucket:    e.AwsBucket,
		Region:    e.AwsRegion,
		Endpoint:  e.AwsEndpoint,
		KeyId:     e.AwsKeyId,
		KeySecret: e.AwsKeySecret,
		Prefix:    e.AwsPrefix,
	}
}

// GetCloudConfigPath returns the path to the yaml file containing the cloud storage credentials
func (e *Environment) GetCloudConfigPath() string {
	return e.ConfigDir + "/cloudconfig.yml"
}

// GetLogPath returns the path of the upload log
func (e *Environment) GetLogPath() string {
	return e.ConfigDir + "/mam-uploader.log"
}

var osExit = os.Exit
