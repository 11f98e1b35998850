package cliconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/forceu/mamupload/internal/configuration/cloudconfig"
	"github.com/forceu/mamupload/internal/environment"
	"github.com/forceu/mamupload/internal/helper"
	"github.com/forceu/mamupload/internal/models"
	"golang.org/x/term"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoLogin is returned if neither a login file nor MAM_UPLOAD_URL exist
var ErrNoLogin = errors.New("no login information found")

// Login contains the saved upload endpoint and credentials
type Login struct {
	Url    string `json:"Url"`
	Apikey string `json:"Apikey"`
}

var osExit = os.Exit
var readLine = helper.ReadLine
var readSecret = readHiddenLine

// CreateLogin asks for the upload url and the API key and saves them to path
func CreateLogin(path string) {
	fmt.Print("Upload URL [" + environment.DefaultUploadUrl + "]: ")
	url := strings.TrimSpace(readLine())
	if url == "" {
		url = environment.DefaultUploadUrl
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		fmt.Println("ERROR: URL must start with http:// or https://")
		osExit(1)
		return
	}
	if strings.HasPrefix(url, "http://") {
		fmt.Println("WARNING: This URL uses an insecure connection. All data, including your API key, will be sent in plain text. This is not recommended for production use.")
	}
	fmt.Print("API key (leave empty if not required): ")
	apikey := strings.TrimSpace(readSecret())
	fmt.Println()

	err := Save(path, Login{Url: url, Apikey: apikey})
	if err != nil {
		fmt.Println("ERROR: Could not save login information")
		fmt.Println(err)
		osExit(1)
		return
	}
	fmt.Println("Login successful")
}

// CreateS3Login asks for the S3 bucket and credentials and saves them to cloudconfig.yml in the config directory
func CreateS3Login(env environment.Environment) {
	config := models.AwsConfig{}
	fmt.Print("Bucket: ")
	config.Bucket = strings.TrimSpace(readLine())
	fmt.Print("Region: ")
	config.Region = strings.TrimSpace(readLine())
	fmt.Print("Key ID: ")
	config.KeyId = strings.TrimSpace(readLine())
	fmt.Print("Key secret: ")
	config.KeySecret = strings.TrimSpace(readSecret())
	fmt.Println()
	fmt.Print("Endpoint (leave empty for AWS): ")
	config.Endpoint = strings.TrimSpace(readLine())
	fmt.Print("Key prefix (optional): ")
	config.Prefix = strings.TrimSpace(readLine())
	if !config.IsAllProvided() {
		fmt.Println("ERROR: Bucket, region, key ID and key secret are required")
		osExit(1)
		return
	}
	err := cloudconfig.Write(&env, cloudconfig.CloudConfig{Aws: config})
	if err != nil {
		fmt.Println("ERROR: Could not save S3 login information")
		fmt.Println(err)
		osExit(1)
		return
	}
	fmt.Println("S3 login saved to " + env.GetCloudConfigPath())
}

// Save writes the login to path, readable only by the current user
func Save(path string, login Login) error {
	jsonData, err := json.Marshal(login)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." {
		helper.CreateDir(dir)
	}
	return os.WriteFile(path, jsonData, 0600)
}

// Load reads the login from path. MAM_UPLOAD_URL and MAM_API_KEY take precedence over the saved values.
// If no file exists, the login is created from the env variables only.
func Load(path string, env environment.Environment) (Login, error) {
	var result Login
	if helper.FileExists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return Login{}, fmt.Errorf("could not read login information: %w", err)
		}
		err = json.Unmarshal(data, &result)
		if err != nil {
			return Login{}, fmt.Errorf("could not read login information: %w", err)
		}
	} else if env.UploadUrl == "" {
		return Login{}, ErrNoLogin
	}
	if env.UploadUrl != "" {
		result.Url = env.UploadUrl
	}
	if env.ApiKey != "" {
		result.Apikey = env.ApiKey
	}
	if result.Url == "" {
		return Login{}, ErrNoLogin
	}
	return result, nil
}

// Delete removes the login file and the saved S3 credentials
func Delete(path string, env environment.Environment) error {
	err := cloudconfig.Delete(&env)
	if err != nil {
		return err
	}
	if !helper.FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

func readHiddenLine() string {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return helper.ReadLine()
	}
	input, err := term.ReadPassword(fd)
	if err != nil {
		return ""
	}
	return string(input)
}
