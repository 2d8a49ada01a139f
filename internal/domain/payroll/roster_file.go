package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileRoster reads roster exports. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON.
type FileRoster struct {
	Path string
}

func NewFileRoster(path string) *FileRoster {
	return &FileRoster{Path: path}
}

func (f *FileRoster) ActiveEmployees(_ context.Context) ([]RosterEmployee, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}

	var records []RosterEmployee
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &records)
	default:
		err = json.Unmarshal(raw, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("decode roster %s: %w", f.Path, err)
	}

	active := records[:0]
	for _, record := range records {
		if record.active() {
			active = append(active, record)
		}
	}
	return active, nil
}
