package cloudconfig

import (
	"errors"
	"fmt"
	"github.com/forceu/mamupload/internal/environment"
	"github.com/forceu/mamupload/internal/helper"
	"github.com/forceu/mamupload/internal/models"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
)

// ErrNotConfigured is returned if neither env variables nor a cloudconfig.yml provide S3 credentials
var ErrNotConfigured = errors.New("no S3 credentials have been set, use the MAM_AWS_* env variables or cloudconfig.yml")

// CloudConfig contains all configuration values / credentials for cloud storage
type CloudConfig struct {
	Aws models.AwsConfig `yaml:"aws"`
}

// Load returns the S3 configuration from env variables or, if these are not set, from cloudconfig.yml
// in the config directory
func Load(env *environment.Environment) (CloudConfig, error) {
	if env.IsAwsProvided() {
		return CloudConfig{Aws: env.GetAwsConfig()}, nil
	}
	path := env.GetCloudConfigPath()
	if !helper.FileExists(path) {
		return CloudConfig{}, ErrNotConfigured
	}
	config, err := loadFromFile(path)
	if err != nil {
		return CloudConfig{}, err
	}
	if env.AwsPrefix != "" {
		config.Aws.Prefix = env.AwsPrefix
	}
	if !config.Aws.IsAllProvided() {
		return CloudConfig{}, fmt.Errorf("%s is incomplete: %w", filepath.Base(path), ErrNotConfigured)
	}
	return config, nil
}

// Write saves the cloudconfig file to the config directory
func Write(env *environment.Environment, config CloudConfig) error {
	helper.CreateDir(env.ConfigDir)
	file, err := os.OpenFile(env.GetCloudConfigPath(), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	defer encoder.Close()
	return encoder.Encode(config)
}

// Delete removes the cloud config file from the config directory
func Delete(env *environment.Environment) error {
	path := env.GetCloudConfigPath()
	if !helper.FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

func loadFromFile(path string) (CloudConfig, error) {
	var result CloudConfig
	content, err := os.ReadFile(path)
	if err != nil {
		return CloudConfig{}, fmt.Errorf("unable to read %s: %w", filepath.Base(path), err)
	}
	err = yaml.Unmarshal(content, &result)
	if err != nil {
		return CloudConfig{}, fmt.Errorf("%s contains invalid yaml: %w", filepath.Base(path), err)
	}
	return result, nil
}
