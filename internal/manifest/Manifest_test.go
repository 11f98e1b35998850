package manifest

import (
	"github.com/forceu/mamupload/internal/test"
	"os"
	"path/filepath"
	"testing"
)

const testManifest = `defaults:
  metadata:
    project: demo
    title: Untitled
files:
  - path: clips/intro.mov
    metadata:
      title: Intro
      description: Opening shot
  - path: cover.jpg
    name: poster.jpg
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	test.IsNil(t, os.MkdirAll(filepath.Dir(path), 0770))
	test.IsNil(t, os.WriteFile(path, []byte(content), 0600))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "clips", "intro.mov"), "movie")
	writeFile(t, filepath.Join(dir, "cover.jpg"), "image")
	writeFile(t, filepath.Join(dir, "upload.yml"), testManifest)

	manifest, err := Load(filepath.Join(dir, "upload.yml"))
	test.IsNil(t, err)
	test.IsEqualInt(t, len(manifest.Files), 2)

	files, err := manifest.PendingFiles()
	test.IsNil(t, err)
	test.IsEqualInt(t, len(files), 2)
	test.IsEqualString(t, files[0].Name, "intro.mov")
	test.IsEqualInt64(t, files[0].Size, 5)
	test.IsEqualString(t, files[0].Metadata["project"], "demo")
	test.IsEqualString(t, files[0].Metadata["title"], "Intro")
	test.IsEqualString(t, files[0].Metadata["description"], "Opening shot")
	test.IsEqualString(t, files[1].Name, "poster.jpg")
	test.IsEqualString(t, files[1].Metadata["title"], "Untitled")
	test.IsEqualInt(t, len(files[1].Metadata), 2)

	// Defaults are not modified by file metadata
	test.IsEqualString(t, manifest.Defaults.Metadata["title"], "Untitled")
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "upload.yml"), testManifest)
	manifest, err := Load(filepath.Join(dir, "upload.yml"))
	test.IsNil(t, err)
	_, err = manifest.PendingFiles()
	test.IsNotNil(t, err)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	test.IsNotNil(t, err)
}

func TestParse(t *testing.T) {
	_, err := Parse([]byte(""), "")
	test.IsErrorOf(t, err, ErrNoFiles)
	_, err = Parse([]byte("files: []"), "")
	test.IsErrorOf(t, err, ErrNoFiles)
	_, err = Parse([]byte("files:\n  - metadata: {a: b}\n"), "")
	test.IsNotNil(t, err)
	_, err = Parse([]byte("files:\n  - path: a\n    titel: typo\n"), "")
	test.IsNotNil(t, err)
	_, err = Parse([]byte("files: [invalid"), "")
	test.IsNotNil(t, err)

	manifest, err := Parse([]byte("files:\n  - path: a.mov\n"), "base")
	test.IsNil(t, err)
	test.IsEqualString(t, manifest.resolve("a.mov"), filepath.Join("base", "a.mov"))
	absolute := filepath.Join(t.TempDir(), "a.mov")
	test.IsEqualString(t, manifest.resolve(absolute), absolute)
	test.IsEqualBool(t, manifest.metadataFor(manifest.Files[0]) == nil, true)
}
