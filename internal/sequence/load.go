package sequence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a program from JSON, or YAML for .yaml/.yml files.
func LoadFile(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	var prog Program
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &prog)
	default:
		err = json.Unmarshal(b, &prog)
	}
	if err != nil {
		return Program{}, fmt.Errorf("parse program %s: %w", path, err)
	}
	if len(prog.Clips) == 0 {
		return Program{}, fmt.Errorf("%s: %w", path, ErrEmptyProgram)
	}
	for i, c := range prog.Clips {
		if c.DurationS <= 0 {
			return Program{}, fmt.Errorf("%s: clip %d (%s) needs a positive durationS", path, i, c.Name)
		}
	}
	return prog, nil
}
