package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	file := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(file, []byte(contents), 0644))
	return file
}

func TestLoad(t *testing.T) {
	t.Run("full manifest from directory", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, `{
			"name": "my-game",
			"servePort": 9000,
			"partitions": {
				"src": {"path": "src"},
				"lib": {"path": "/opt/shared/lib"}
			}
		}`)

		proj, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "my-game", proj.Name)
		assert.Equal(t, 9000, proj.ServePort)
		assert.Len(t, proj.Partitions, 2)
		assert.Equal(t, dir, proj.Dir)
	})

	t.Run("manifest file given directly", func(t *testing.T) {
		dir := t.TempDir()
		file := writeManifest(t, dir, `{"name": "direct"}`)

		proj, err := Load(file)
		require.NoError(t, err)
		assert.Equal(t, "direct", proj.Name)
		assert.Equal(t, dir, proj.Dir)
	})

	t.Run("defaults fill missing fields", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, `{}`)

		proj, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, filepath.Base(dir), proj.Name)
		assert.Equal(t, DefaultPort, proj.ServePort)
		assert.NotNil(t, proj.Partitions)
		assert.Empty(t, proj.Partitions)
	})

	t.Run("missing manifest", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})

	t.Run("directory without manifest", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed manifest", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, `{"name":`)

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing project manifest")
	})
}

func TestPartitionRoot(t *testing.T) {
	proj := &Project{Dir: "/projects/demo"}

	assert.Equal(t, "/projects/demo/src", proj.PartitionRoot(Partition{Path: "src"}))
	assert.Equal(t, "/opt/shared", proj.PartitionRoot(Partition{Path: "/opt/shared/"}))
}

func TestInitDefault(t *testing.T) {
	dir := t.TempDir()

	file, err := InitDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFilename), file)

	proj, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), proj.Name)
	assert.Equal(t, DefaultPort, proj.ServePort)
	assert.Contains(t, proj.Partitions, "src")

	_, err = InitDefault(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
