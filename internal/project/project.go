// Package project loads and writes the rojo.json manifest that describes a
// served project: its name, port, and the partitions mapping route names
// onto physical directories.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// DefaultFilename is the manifest looked for inside a project directory.
	DefaultFilename = "rojo.json"

	// DefaultPort is used when the manifest does not set servePort.
	DefaultPort = 8000
)

// Partition declares one physical directory served under a partition name.
// A relative Path resolves against the manifest's own directory, so a
// checked-out project works from any working directory.
type Partition struct {
	Path string `json:"path"`
}

// Project is a parsed manifest.
type Project struct {
	Name       string               `json:"name"`
	ServePort  int                  `json:"servePort"`
	Partitions map[string]Partition `json:"partitions"`

	// Dir is the absolute directory the manifest was loaded from. It is
	// derived at load time, never serialized.
	Dir string `json:"-"`
}

// Load reads a manifest. path may name the manifest file itself or a
// directory containing one. Missing optional fields get their defaults.
func Load(path string) (*Project, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening project %q", path)
	}

	file := path
	if info.IsDir() {
		file = filepath.Join(path, DefaultFilename)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading project manifest %q", file)
	}

	var proj Project
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, errors.Wrapf(err, "parsing project manifest %q", file)
	}

	dir, err := filepath.Abs(filepath.Dir(file))
	if err != nil {
		return nil, errors.Wrap(err, "resolving project directory")
	}
	proj.Dir = dir

	if proj.Name == "" {
		proj.Name = filepath.Base(dir)
	}
	if proj.ServePort == 0 {
		proj.ServePort = DefaultPort
	}
	if proj.Partitions == nil {
		proj.Partitions = make(map[string]Partition)
	}
	return &proj, nil
}

// PartitionRoot returns the absolute physical root behind part.
func (p *Project) PartitionRoot(part Partition) string {
	if filepath.IsAbs(part.Path) {
		return filepath.Clean(part.Path)
	}
	return filepath.Join(p.Dir, part.Path)
}

// InitDefault writes a starter manifest into dir and returns its path. An
// existing manifest is never overwritten.
func InitDefault(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %q", dir)
	}

	file := filepath.Join(abs, DefaultFilename)
	if _, err := os.Stat(file); err == nil {
		return "", errors.Errorf("manifest %q already exists", file)
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "checking %q", file)
	}

	starter := Project{
		Name:      filepath.Base(abs),
		ServePort: DefaultPort,
		Partitions: map[string]Partition{
			"src": {Path: "src"},
		},
	}

	data, err := json.MarshalIndent(&starter, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding starter manifest")
	}
	data = append(data, '\n')

	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", errors.Wrapf(err, "writing %q", file)
	}
	return file, nil
}
