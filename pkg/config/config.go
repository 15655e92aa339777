// Package config loads the release tooling configuration: embedded
// defaults merged with a caelum.toml (or .caelum.toml / .caelum.yaml) from
// the repository root. The GitHub token lives in a separate tokens.json so
// it never ends up in the tracked config file. The loaded Config value is
// passed explicitly into commands; there are no process-wide singletons.
package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
	"github.com/ChaoticTrials/Caelum/pkg/server"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// GitHub identifies the repository releases are published to.
type GitHub struct {
	Owner string `koanf:"owner"`
	Repo  string `koanf:"repo"`
}

// ModListCreator pins the external mod list tool.
type ModListCreator struct {
	Version string `koanf:"version"`
	BaseURL string `koanf:"base_url"`
}

// Config is the full release tooling configuration.
type Config struct {
	Name           string            `koanf:"name"`
	BuildDir       string            `koanf:"build_dir"`
	Overrides      []string          `koanf:"overrides"`
	ClientMods     []int             `koanf:"client_mods"`
	GitHub         GitHub            `koanf:"github"`
	ModListCreator ModListCreator    `koanf:"modlist_creator"`
	Server         server.Properties `koanf:"server"`
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load reads the configuration for the repository at root. When explicit is
// non-empty only that file is merged over the defaults; otherwise the first
// of caelum.toml, .caelum.toml and .caelum.yaml found at root is used.
func Load(root, explicit string) (*Config, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default config")
	}

	path := explicit
	if path == "" {
		for _, filename := range []string{"caelum.toml", ".caelum.toml", ".caelum.yaml"} {
			candidate := filepath.Join(root, filename)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		var parser koanf.Parser = toml.Parser()
		if filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml" {
			parser = yaml.Parser()
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
		logger.Debug().Str("path", path).Msg("Config file loaded")
	} else {
		logger.Debug().Msg("No config file found, using defaults")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode config")
	}

	if cfg.Name == "" {
		return nil, errors.New(errors.ErrConfigValid, "modpack name must not be empty")
	}
	if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
		return nil, errors.New(errors.ErrConfigValid, "github owner and repo must be set")
	}

	return &cfg, nil
}

// LoadToken reads the GitHub token from a tokens.json file of the shape
// {"github": "<token>"}.
func LoadToken(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", errors.Wrapf(err, errors.ErrNotFound, "token file %s does not exist", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigLoad, "failed to load token file %s", path)
	}

	token := k.String("github")
	if token == "" {
		return "", errors.Newf(errors.ErrConfigValid, "token file %s has no github entry", path)
	}
	return token, nil
}
