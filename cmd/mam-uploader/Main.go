package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/forceu/mamupload/cmd/mam-uploader/cliconfig"
	"github.com/forceu/mamupload/cmd/mam-uploader/cliconstants"
	"github.com/forceu/mamupload/cmd/mam-uploader/cliflags"
	"github.com/forceu/mamupload/internal/configuration/cloudconfig"
	"github.com/forceu/mamupload/internal/coordinator"
	"github.com/forceu/mamupload/internal/encryption"
	"github.com/forceu/mamupload/internal/environment"
	"github.com/forceu/mamupload/internal/logging"
	"github.com/forceu/mamupload/internal/manifest"
	"github.com/forceu/mamupload/internal/models"
	"github.com/forceu/mamupload/internal/progress"
	"github.com/forceu/mamupload/internal/transfer/httpupload"
	"github.com/forceu/mamupload/internal/transfer/s3upload"
	"golang.org/x/term"
	"io"
	"os"
	"os/signal"
	"time"
)

var osExit = os.Exit

func main() {
	env := environment.New()
	mode := cliflags.Parse(os.Args)
	switch mode {
	case cliflags.ModeLogin:
		if cliflags.GetLoginParameters(os.Args).UseS3 {
			cliconfig.CreateS3Login(env)
			return
		}
		cliconfig.CreateLogin(cliflags.GetConfigLocation(os.Args, env))
	case cliflags.ModeLogout:
		doLogout(cliflags.GetConfigLocation(os.Args, env), env)
	case cliflags.ModeUpload:
		osExit(processUpload(env, cliflags.GetUploadParameters(os.Args, env), cliflags.GetConfigLocation(os.Args, env)))
	case cliflags.ModeLog:
		showLog(env, cliflags.GetLogParameters(os.Args))
	case cliflags.ModeVersion:
		fmt.Println(environment.VersionString())
	case cliflags.ModeInvalid:
		osExit(cliconstants.ExitCodeInvalidUsage)
	}
}

func doLogout(configPath string, env environment.Environment) {
	err := cliconfig.Delete(configPath, env)
	if err != nil {
		fmt.Println("ERROR: Could not delete configuration file")
		fmt.Println(err)
		osExit(cliconstants.ExitCodeConfigError)
		return
	}
	fmt.Println("Logged out. To login again, run: mam-uploader login")
}

func showLog(env environment.Environment, param cliflags.LogConfig) {
	logging.Init(env)
	if param.Clear {
		err := logging.DeleteLogs()
		if err != nil {
			fmt.Println("ERROR: Could not clear log")
			fmt.Println(err)
			osExit(cliconstants.ExitCodeConfigError)
			return
		}
		fmt.Println("Log cleared")
		return
	}
	content, _ := logging.GetAll(true)
	fmt.Println(content)
}

// processUpload uploads all files selected by param and returns the exit code
func processUpload(env environment.Environment, param cliflags.UploadConfig, configPath string) int {
	logging.Init(env)
	files, err := collectFiles(param)
	if err != nil {
		fmt.Println("ERROR: Could not read files")
		fmt.Println(err)
		return cliconstants.ExitCodeConfigError
	}
	files, err = prepareFiles(files, param)
	if err != nil {
		fmt.Println("ERROR: Could not prepare files")
		fmt.Println(err)
		return cliconstants.ExitCodeConfigError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	transferer, err := createTransferer(ctx, env, param, configPath)
	if err != nil {
		if errors.Is(err, cliconfig.ErrNoLogin) {
			fmt.Println("ERROR: No login information found")
			fmt.Println("Please run 'mam-uploader login' to create a login")
		} else {
			fmt.Println("ERROR: Could not set up upload")
			fmt.Println(err)
		}
		return cliconstants.ExitCodeConfigError
	}

	display := newProgressDisplay(files, !param.JsonOutput && term.IsTerminal(int(os.Stdout.Fd())), os.Stderr)
	uploader := coordinator.New(transferer,
		coordinator.WithMaxParallel(param.MaxParallel),
		coordinator.WithProgressListener(display.Update))
	uploader.AddFiles(files...)
	report, err := uploader.UploadAll(ctx)
	display.Finish()
	if err != nil {
		fmt.Println("ERROR: " + err.Error())
		return cliconstants.ExitCodeUploadFailed
	}

	if param.JsonOutput {
		err = printJson(os.Stdout, report)
		if err != nil {
			fmt.Println("ERROR: " + err.Error())
			return cliconstants.ExitCodeUploadFailed
		}
	} else {
		printReport(os.Stdout, report)
	}
	return exitCode(ctx, report)
}

func collectFiles(param cliflags.UploadConfig) ([]models.PendingFile, error) {
	result := make([]models.PendingFile, 0, len(param.Files))
	for _, path := range param.Files {
		file, err := models.PendingFileFromPath(path)
		if err != nil {
			return nil, err
		}
		result = append(result, file)
	}
	if param.Directory != "" {
		files, err := models.PendingFilesFromDir(param.Directory)
		if err != nil {
			return nil, err
		}
		result = append(result, files...)
	}
	if param.Manifest != "" {
		uploadManifest, err := manifest.Load(param.Manifest)
		if err != nil {
			return nil, err
		}
		files, err := uploadManifest.PendingFiles()
		if err != nil {
			return nil, err
		}
		result = append(result, files...)
	}
	if len(result) == 0 {
		return nil, errors.New("no files found to upload")
	}
	return result, nil
}

// prepareFiles encrypts the files if a passphrase is set and applies the speed limit.
// The limit is applied to the encrypted stream, as this is what is sent.
func prepareFiles(files []models.PendingFile, param cliflags.UploadConfig) ([]models.PendingFile, error) {
	limiter := progress.NewLimiter(int64(param.LimitKb) * 1024)
	result := make([]models.PendingFile, 0, len(files))
	for _, file := range files {
		if param.Passphrase != "" {
			var err error
			file, err = encryption.WrapFile(file, param.Passphrase)
			if err != nil {
				return nil, err
			}
		}
		result = append(result, limiter.Wrap(file))
	}
	return result, nil
}

func createTransferer(ctx context.Context, env environment.Environment, param cliflags.UploadConfig, configPath string) (coordinator.Transferer, error) {
	if param.UseS3 {
		config, err := cloudconfig.Load(&env)
		if err != nil {
			return nil, err
		}
		uploader, err := s3upload.New(ctx, config.Aws)
		if err != nil {
			return nil, err
		}
		logging.LogInfo("Uploading to S3 bucket " + config.Aws.Bucket)
		return uploader, nil
	}
	login, err := cliconfig.Load(configPath, env)
	if err != nil {
		return nil, err
	}
	logging.LogInfo("Uploading to " + login.Url)
	return httpupload.New(login.Url,
		httpupload.WithApiKey(login.Apikey),
		httpupload.WithFieldName(env.FormField),
		httpupload.WithTimeout(time.Duration(env.RequestTimeout)*time.Second)), nil
}

func printJson(w io.Writer, report models.UploadReport) error {
	output := make([]models.UploadResultOutput, 0, len(report.Results))
	for _, result := range report.Results {
		resultOutput, err := result.ToJsonOutput()
		if err != nil {
			return err
		}
		output = append(output, resultOutput)
	}
	jsonStr, err := json.Marshal(output)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(jsonStr))
	return err
}

func printReport(w io.Writer, report models.UploadReport) {
	isUnauthorised := false
	for _, result := range report.Results {
		switch result.Status {
		case models.UploadSuccess:
			line := fmt.Sprintf("OK         %s", result.Name)
			if result.Location != "" {
				line = line + " -> " + result.Location
			}
			_, _ = fmt.Fprintln(w, line)
		case models.UploadCancelled:
			_, _ = fmt.Fprintf(w, "CANCELLED  %s\n", result.Name)
		default:
			_, _ = fmt.Fprintf(w, "FAILED     %s: %v\n", result.Name, errors.Unwrap(result.Err))
			if errors.Is(result.Err, httpupload.ErrUnauthorised) {
				isUnauthorised = true
			}
		}
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Uploaded %d of %d files\n", report.SuccessCount(), len(report.Results))
	if isUnauthorised {
		_, _ = fmt.Fprintln(w, "ERROR: Unauthorised API key. Please re-run login.")
	}
}

func exitCode(ctx context.Context, report models.UploadReport) int {
	if ctx.Err() != nil && report.CancelledCount() > 0 {
		logging.LogWarning("Upload interrupted")
		return cliconstants.ExitCodeCancelled
	}
	if len(report.Failures()) > 0 {
		return cliconstants.ExitCodeUploadFailed
	}
	return 0
}
