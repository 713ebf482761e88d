// .stringray.yml lint configuration file support:
//
//	included:            # when set, only these rules run
//	  - missing_localization
//	excluded:            # never run these
//	  - missing_comment
//	rules:
//	  duplicate_key:
//	    severity: warning

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/stringray/lint"
)

// LintFileName is the default lint configuration file name.
const LintFileName = lint.ConfigFileName

// LoadLintConfig loads and validates a lint configuration file. Unknown
// keys and unknown rule ids are errors. An empty file is the default
// configuration.
func LoadLintConfig(path string) (lint.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return lint.Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg lint.Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return lint.Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(lint.AllRules()); err != nil {
		return lint.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindLintConfig loads LintFileName from dir. When the file does not exist
// it returns the default configuration and an empty path.
func FindLintConfig(dir string) (lint.Config, string, error) {
	path := filepath.Join(dir, LintFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return lint.Config{}, "", nil
		}
		return lint.Config{}, "", fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := LoadLintConfig(path)
	if err != nil {
		return lint.Config{}, "", err
	}
	return cfg, path, nil
}
