// Package manifest handles elementary.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents an elementary.toml configuration file.
type Manifest struct {
	Audio     Audio             `toml:"audio"`
	Server    Server            `toml:"server"`
	Resources map[string]string `toml:"resources"`

	// Dir is the directory containing the elementary.toml file (set at
	// load time); resource paths resolve relative to it.
	Dir string `toml:"-"`
}

// Audio configures the render format.
type Audio struct {
	SampleRate float64 `toml:"sample_rate"`
	BlockSize  int     `toml:"block_size"`
	Channels   int     `toml:"channels"`
}

// Server configures the WebSocket endpoint.
type Server struct {
	Addr    string `toml:"addr"`
	Journal string `toml:"journal"`
}

// Default returns the configuration used when no manifest file exists.
func Default() *Manifest {
	return &Manifest{
		Audio: Audio{
			SampleRate: 44100,
			BlockSize:  512,
			Channels:   2,
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Load parses an elementary.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "elementary.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if m.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %v", m.Audio.SampleRate)
	}
	if m.Audio.BlockSize <= 0 {
		return fmt.Errorf("audio.block_size must be positive, got %d", m.Audio.BlockSize)
	}
	if m.Audio.Channels <= 0 || m.Audio.Channels > 32 {
		return fmt.Errorf("audio.channels must be in 1..32, got %d", m.Audio.Channels)
	}
	return nil
}

// ResourcePath returns the absolute path of a configured resource.
func (m *Manifest) ResourcePath(name string) (string, bool) {
	p, ok := m.Resources[name]
	if !ok {
		return "", false
	}
	if filepath.IsAbs(p) {
		return p, true
	}
	return filepath.Join(m.Dir, p), true
}
