// Package manifest reads YAML files that list the files to upload together with their metadata
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/forceu/mamupload/internal/models"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"path/filepath"
)

// ErrNoFiles is returned if a manifest does not contain any files
var ErrNoFiles = errors.New("manifest does not contain any files")

// Manifest is the content of a manifest file
type Manifest struct {
	Defaults Defaults `yaml:"defaults"`
	Files    []Entry  `yaml:"files"`
	baseDir  string
}

// Defaults are applied to every file of the manifest
type Defaults struct {
	Metadata map[string]string `yaml:"metadata"`
}

// Entry is a single file of the manifest
type Entry struct {
	Path string `yaml:"path"`
	// Name replaces the file name sent to the server, if set
	Name     string            `yaml:"name"`
	Metadata map[string]string `yaml:"metadata"`
}

// Load reads the manifest at path. Relative file paths are resolved against the directory of the manifest
func Load(path string) (Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	result, err := Parse(content, filepath.Dir(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return result, nil
}

// Parse decodes a manifest. Relative file paths are resolved against baseDir
func Parse(content []byte, baseDir string) (Manifest, error) {
	var result Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	err := decoder.Decode(&result)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Manifest{}, ErrNoFiles
		}
		return Manifest{}, err
	}
	if len(result.Files) == 0 {
		return Manifest{}, ErrNoFiles
	}
	for i, entry := range result.Files {
		if entry.Path == "" {
			return Manifest{}, fmt.Errorf("file #%d has no path", i+1)
		}
	}
	result.baseDir = baseDir
	return result, nil
}

// PendingFiles returns the files of the manifest in order, each with the default metadata
// overridden key by key by its own metadata
func (m Manifest) PendingFiles() ([]models.PendingFile, error) {
	result := make([]models.PendingFile, 0, len(m.Files))
	for _, entry := range m.Files {
		file, err := models.PendingFileFromPath(m.resolve(entry.Path))
		if err != nil {
			return nil, err
		}
		if entry.Name != "" {
			file.Name = entry.Name
		}
		result = append(result, file.WithMetadata(m.metadataFor(entry)))
	}
	return result, nil
}

func (m Manifest) resolve(path string) string {
	if filepath.IsAbs(path) || m.baseDir == "" {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

func (m Manifest) metadataFor(entry Entry) map[string]string {
	if len(m.Defaults.Metadata) == 0 && len(entry.Metadata) == 0 {
		return nil
	}
	result := make(map[string]string, len(m.Defaults.Metadata)+len(entry.Metadata))
	for key, value := range m.Defaults.Metadata {
		result[key] = value
	}
	for key, value := range entry.Metadata {
		result[key] = value
	}
	return result
}
