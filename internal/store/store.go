package store

import (
	"fmt"
	"os"

	"github.com/cjeanneret/RotGo/internal/debug"
	"gopkg.in/yaml.v3"
)

// ValidMarker distinguishes a real save from erased flash, an empty
// file or somebody else's YAML. Same arbitrary constant the EEPROM
// layout used.
const ValidMarker = 12345

type document struct {
	Marker    int `yaml:"marker"`
	Azimuth   int `yaml:"azimuth"`
	Elevation int `yaml:"elevation"`
}

// File is the position persistence service: a small YAML document with
// a validity marker, written atomically so a power cut mid-write never
// leaves a torn state behind.
type File struct {
	path string
}

// New returns a store backed by the given path. Nothing is touched
// until Load or Save.
func New(path string) *File {
	return &File{path: path}
}

// Load reads the persisted positions. ok is false when the file is
// missing, unreadable or carries the wrong marker; the caller then
// runs calibration instead of trusting the values.
func (f *File) Load() (az, el int, ok bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			debug.Error(fmt.Errorf("read state file: %w", err))
		}
		return 0, 0, false
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		debug.Error(fmt.Errorf("unmarshal state file: %w", err))
		return 0, 0, false
	}
	if doc.Marker != ValidMarker {
		debug.Info("state file marker %d invalid, ignoring saved positions", doc.Marker)
		return 0, 0, false
	}
	return doc.Azimuth, doc.Elevation, true
}

// Save writes both positions with the validity marker, via a temp
// file and rename.
func (f *File) Save(az, el int) error {
	data, err := yaml.Marshal(document{
		Marker:    ValidMarker,
		Azimuth:   az,
		Elevation: el,
	})
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}
