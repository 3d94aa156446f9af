package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath is the path of the override file of a config file, for
// "config.json5" it is "config.local.json5".
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)
}

func readFile[T any](path string) (T, bool, error) {
	var out T
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	err = json5.Unmarshal(contents, &out)
	if err != nil {
		return out, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, true, nil
}

// ReadConfig reads a json5 configuration file and merges the values of
// its local override on top of it, see LocalPath. Either file may be
// missing but not both, in which case the error wraps os.ErrNotExist.
func ReadConfig[T any](name string) (T, error) {
	out, found, err := readFile[T](name)
	if err != nil {
		return out, err
	}

	local := LocalPath(name)
	override, foundLocal, err := readFile[T](local)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", local)
	}

	if !found && !foundLocal {
		return out, fmt.Errorf("read %s: %w", name, os.ErrNotExist)
	}
	return out, nil
}

// ReadRecursively is ReadConfig for a relative name, it tries every
// directory from the cwd up to the filesystem root and reads the first
// match.
func ReadRecursively[T any](name string) (T, error) {
	var empty T

	current, err := os.Getwd()
	if err != nil {
		return empty, err
	}
	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return empty, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return empty, fmt.Errorf("find %s: %w", name, os.ErrNotExist)
		}
		current = parent
	}
}
