package environment

import (
	"github.com/forceu/mamupload/internal/test"
	"testing"
)

func TestEnvLoadDefaults(t *testing.T) {
	env := New()
	test.IsEqualString(t, env.ConfigDir, ".")
	test.IsEqualString(t, env.ConfigPath, "./mam-uploader.json")
	test.IsEqualString(t, env.FormField, "file")
	test.IsEqualInt(t, env.MaxParallelUploads, 1)
	test.IsEqualInt(t, env.RateLimitKb, 0)
	test.IsEqualBool(t, env.LogToStdout, false)
	test.IsEqualBool(t, env.IsAwsProvided(), false)
	test.IsEqualString(t, env.GetLogPath(), "./mam-uploader.log")
	test.IsEqualString(t, env.GetCloudConfigPath(), "./cloudconfig.yml")
}

func TestEnvLoad(t *testing.T) {
	t.Setenv("MAM_CONFIG_DIR", "test/")
	t.Setenv("MAM_CONFIG_FILE", "test2")
	t.Setenv("MAM_UPLOAD_URL", " https://mam.example.com/api/v1/upload ")
	t.Setenv("MAM_MAX_PARALLEL_UPLOADS", "3")
	t.Setenv("MAM_RATE_LIMIT_KB", "512")
	t.Setenv("MAM_LOG_STDOUT", "true")
	env := New()
	test.IsEqualString(t, env.ConfigPath, "test/test2")
	test.IsEqualString(t, env.UploadUrl, "https://mam.example.com/api/v1/upload")
	test.IsEqualInt(t, env.MaxParallelUploads, 3)
	test.IsEqualInt(t, env.RateLimitKb, 512)
	test.IsEqualBool(t, env.LogToStdout, true)

	t.Setenv("MAM_MAX_PARALLEL_UPLOADS", "-2")
	t.Setenv("MAM_RATE_LIMIT_KB", "-5")
	t.Setenv("MAM_REQUEST_TIMEOUT", "-1")
	t.Setenv("MAM_FORM_FIELD", "")
	env = New()
	test.IsEqualInt(t, env.MaxParallelUploads, 1)
	test.IsEqualInt(t, env.RateLimitKb, 0)
	test.IsEqualInt(t, env.RequestTimeout, 0)
	test.IsEqualString(t, env.FormField, "file")
}

func TestEnvInvalid(t *testing.T) {
	t.Setenv("MAM_MAX_PARALLEL_UPLOADS", "invalid")
	defer func() { osExit = osExitOriginal }()
	osExit = test.ExitCode(t, 1)
	env := New()
	test.IsEqualString(t, env.ConfigPath, "")
}

var osExitOriginal = osExit

func TestAwsConfig(t *testing.T) {
	t.Setenv("MAM_AWS_BUCKET", "bucket")
	t.Setenv("MAM_AWS_REGION", "eu-central-1")
	t.Setenv("MAM_AWS_KEY", "key")
	t.Setenv("MAM_AWS_KEY_SECRET", "secret")
	t.Setenv("MAM_AWS_PREFIX", "ingest")
	env := New()
	test.IsEqualBool(t, env.IsAwsProvided(), true)
	config := env.GetAwsConfig()
	test.IsEqualString(t, config.Bucket, "bucket")
	test.IsEqualString(t, config.Region, "eu-central-1")
	test.IsEqualString(t, config.KeyId, "key")
	test.IsEqualString(t, config.KeySecret, "secret")
	test.IsEqualString(t, config.KeyPrefix(), "ingest/")
}

func TestVersionString(t *testing.T) {
	test.Contains(t, VersionString(), "MAM Uploader dev")
	test.Contains(t, VersionString(), "Manual Build")
}
