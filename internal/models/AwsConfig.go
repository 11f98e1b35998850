package models

import "strings"

// AwsConfig contains all configuration values / credentials for uploading to AWS S3 or compatible storage
type AwsConfig struct {
	Bucket    string `yaml:"Bucket"`
	Region    string `yaml:"Region"`
	Endpoint  string `yaml:"Endpoint"`
	KeyId     string `yaml:"KeyId"`
	KeySecret string `yaml:"KeySecret"`
	// Prefix is prepended to every object key
	Prefix string `yaml:"Prefix"`
}

// IsAllProvided returns true if all required variables have been set for using AWS S3 / Backblaze
func (c *AwsConfig) IsAllProvided() bool {
	return c.Bucket != "" &&
		c.Region != "" &&
		c.KeyId != "" &&
		c.KeySecret != ""
}

// KeyPrefix returns the prefix with a trailing slash, or an empty string if none is set
func (c *AwsConfig) KeyPrefix() string {
	prefix := strings.Trim(c.Prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
