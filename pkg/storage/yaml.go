package storage

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/starry-habits/pkg/habits"
)

// backupVersion is written to every YAML export.
const backupVersion = 1

type yamlBackup struct {
	Version int             `yaml:"version"`
	Habits  []habits.Habit  `yaml:"habits"`
	Logs    []habits.DayLog `yaml:"logs"`
}

// ExportYAML writes a human-readable backup of data.
func ExportYAML(w io.Writer, data *habits.Data) error {
	if data == nil {
		data = habits.NewData()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlBackup{Version: backupVersion, Habits: data.Habits, Logs: data.Logs}); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return enc.Close()
}

// ImportYAML reads a backup written by ExportYAML and checks it for
// duplicate ids, unknown importance levels and malformed dates.
func ImportYAML(r io.Reader) (*habits.Data, error) {
	var backup yamlBackup
	if err := yaml.NewDecoder(r).Decode(&backup); err != nil {
		if err == io.EOF {
			return habits.NewData(), nil
		}
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version > backupVersion {
		return nil, fmt.Errorf("backup version %d is newer than supported version %d", backup.Version, backupVersion)
	}

	data := &habits.Data{Habits: backup.Habits, Logs: backup.Logs}
	data.Normalize()
	if err := data.Check(); err != nil {
		return nil, err
	}
	return data, nil
}
