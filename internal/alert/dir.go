package alert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MetaFileName is the metadata document inside every alert directory.
const MetaFileName = "meta.yaml"

// Dir is one alert directory: the files the delivery framework wrote
// for the alert and the parsed metadata document.
type Dir struct {
	Path  string
	Files []string
	Meta  *Metadata
}

// ReadDir lists the files of an alert directory (dotfiles are skipped)
// and parses meta.yaml. The metadata document is required.
func ReadDir(path string) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read alert dir: %w", err)
	}

	d := &Dir{Path: path}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		fp := filepath.Join(path, name)
		d.Files = append(d.Files, fp)

		if name == MetaFileName {
			raw, err := os.ReadFile(fp)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", fp, err)
			}
			var m Metadata
			if err := yaml.Unmarshal(raw, &m); err != nil {
				return nil, fmt.Errorf("parse %s: %w", fp, err)
			}
			d.Meta = &m
		}
	}

	if d.Meta == nil {
		return nil, fmt.Errorf("no %s in %s", MetaFileName, path)
	}
	return d, nil
}
