package cliflags

import (
	"fmt"
	"github.com/forceu/mamupload/cmd/mam-uploader/cliconstants"
	"github.com/forceu/mamupload/internal/environment"
	"os"
	"strconv"
)

const (
	// ModeLogin saves the upload url and API key
	ModeLogin = iota
	// ModeLogout deletes the saved login
	ModeLogout
	// ModeUpload uploads files
	ModeUpload
	// ModeLog prints the upload log
	ModeLog
	// ModeVersion prints the version
	ModeVersion
	// ModeInvalid is returned for unknown commands
	ModeInvalid
)

// UploadConfig contains the parameters of the upload command
type UploadConfig struct {
	Files       []string
	Directory   string
	Manifest    string
	JsonOutput  bool
	MaxParallel int
	LimitKb     int
	Passphrase  string
	UseS3       bool
}

// LoginConfig contains the parameters of the login command
type LoginConfig struct {
	UseS3 bool
}

// LogConfig contains the parameters of the log command
type LogConfig struct {
	Clear bool
}

var osExit = os.Exit

// Parse returns the mode selected by the first argument
func Parse(args []string) int {
	if len(args) < 2 {
		printUsage()
		return ModeInvalid
	}
	switch args[1] {
	case "login":
		return ModeLogin
	case "logout":
		return ModeLogout
	case "upload":
		return ModeUpload
	case "log":
		return ModeLog
	case "version", "--version":
		return ModeVersion
	default:
		printUsage()
		return ModeInvalid
	}
}

// GetUploadParameters parses the parameters of the upload command. Values that are not set
// are taken from env
func GetUploadParameters(args []string, env environment.Environment) UploadConfig {
	result := UploadConfig{
		MaxParallel: env.MaxParallelUploads,
		LimitKb:     env.RateLimitKb,
	}
	for i := 2; i < len(args); i++ {
		switch args[i] {
		case "--json":
			result.JsonOutput = true
		case "--s3":
			result.UseS3 = true
		case "-f":
			result.Files = append(result.Files, getParameter(args, &i))
		case "-d":
			result.Directory = getParameter(args, &i)
		case "-m":
			result.Manifest = getParameter(args, &i)
		case "--parallel":
			result.MaxParallel = requireInt(getParameter(args, &i))
		case "--limit-kb":
			result.LimitKb = requireInt(getParameter(args, &i))
		case "--encrypt":
			result.Passphrase = getParameter(args, &i)
		case "-c":
			i++
		}
	}
	if len(result.Files) == 0 && result.Directory == "" && result.Manifest == "" {
		fmt.Println("ERROR: Missing parameter -f, -d or -m")
		osExit(cliconstants.ExitCodeConfigError)
		return UploadConfig{}
	}
	if result.MaxParallel < 1 {
		fmt.Println("ERROR: --parallel must be at least 1")
		osExit(cliconstants.ExitCodeConfigError)
		return UploadConfig{}
	}
	if result.LimitKb < 0 {
		result.LimitKb = 0
	}
	return result
}

// GetLoginParameters parses the parameters of the login command
func GetLoginParameters(args []string) LoginConfig {
	result := LoginConfig{}
	for i := 2; i < len(args); i++ {
		if args[i] == "--s3" {
			result.UseS3 = true
		}
	}
	return result
}

// GetLogParameters parses the parameters of the log command
func GetLogParameters(args []string) LogConfig {
	result := LogConfig{}
	for i := 2; i < len(args); i++ {
		if args[i] == "--clear" {
			result.Clear = true
		}
	}
	return result
}

// GetConfigLocation returns the path of the login file, either set with -c or taken from env
func GetConfigLocation(args []string, env environment.Environment) string {
	for i := 2; i < len(args); i++ {
		switch args[i] {
		case "-c":
			return getParameter(args, &i)
		}
	}
	return env.ConfigPath
}

func getParameter(args []string, position *int) string {
	*position = *position + 1
	if *position >= len(args) {
		printUsage()
		osExit(cliconstants.ExitCodeInvalidUsage)
		return ""
	}
	return args[*position]
}

func requireInt(input string) int {
	result, err := strconv.Atoi(input)
	if err != nil {
		fmt.Println("ERROR: " + input + " is not a valid integer")
		osExit(cliconstants.ExitCodeConfigError)
		return 0
	}
	return result
}

func printUsage() {
	fmt.Println(environment.VersionString())
	fmt.Println()
	fmt.Println("Valid options are:")
	fmt.Println("   mam-uploader login [--s3] [-c /path/to/config]")
	fmt.Println("   mam-uploader logout [-c /path/to/config]")
	fmt.Println("   mam-uploader upload [-f /file/to/upload]... [-d /folder/to/upload] [-m manifest.yml]\n" +
		"                       [--json] [--parallel INT] [--limit-kb INT]\n" +
		"                       [--encrypt PASSPHRASE] [--s3] [-c /path/to/config]")
	fmt.Println("   mam-uploader log [--clear]")
	fmt.Println("   mam-uploader version")
	fmt.Println()
	fmt.Println("mam-uploader login:")
	fmt.Println("--s3            Saves S3 credentials to cloudconfig.yml instead of an upload URL")
	fmt.Println()
	fmt.Println("mam-uploader upload:")
	fmt.Println("-f              Adds a file, can be used multiple times")
	fmt.Println("-d              Adds all files of a folder and its subfolders")
	fmt.Println("-m              Adds all files listed in a YAML manifest, including their metadata")
	fmt.Println("--json          Outputs the result as JSON only")
	fmt.Println("--parallel      Uploads up to INT files at the same time, default is one after another")
	fmt.Println("--limit-kb      Limits the upload speed to INT kilobytes per second")
	fmt.Println("--encrypt       Encrypts all files with the passphrase before uploading")
	fmt.Println("--s3            Uploads to the S3 bucket set in cloudconfig.yml or MAM_AWS_* instead")
}
