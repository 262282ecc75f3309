package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func stripExt(name string) (prefix, ext string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}

// readLayer unmarshals one config file into out. A missing or empty
// file reports found=false instead of an error.
func readLayer(out any, path string) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	return true, json5.Unmarshal(contents, out)
}

// ReadConfig reads the json5 file at `name` (extension included), then
// merges a sibling `<name>.local.<ext>` on top when one exists, so
// per-machine overrides stay out of the checked-in config. When
// neither file exists the error is os.ErrNotExist.
func ReadConfig[T any](name string) (T, error) {
	var config T

	prefix, ext := stripExt(filepath.Base(name))
	localPath := filepath.Join(
		filepath.Dir(name),
		fmt.Sprintf("%s.local.%s", prefix, ext),
	)

	foundBase, err := readLayer(&config, name)
	if err != nil {
		return config, err
	}

	var override T
	foundLocal, err := readLayer(&override, localPath)
	if err != nil {
		return config, err
	}
	if foundLocal {
		if err := mergo.Merge(&config, override, mergo.WithOverride); err != nil {
			return config, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
	}

	if !foundBase && !foundLocal {
		return config, os.ErrNotExist
	}
	return config, nil
}

// ReadRecursively walks up from the working directory until a config
// matching `name` is found. telemetry.json5 is looked up this way so a
// single file at the repo root covers every binary and test under it.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
