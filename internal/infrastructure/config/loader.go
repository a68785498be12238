package config

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes nested environment overrides:
// CLICKUP_MCP__CLICKUP__TEAM_ID -> clickup.team_id
const EnvPrefix = "CLICKUP_MCP"

// Loader layers configuration sources. Later sources win.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
}

// NewLoader creates a loader reading environment variables that start with
// prefix followed by a double underscore.
func NewLoader(prefix string) *Loader {
	return &Loader{
		k:         koanf.New("."),
		envPrefix: prefix + "__",
	}
}

// LoadWithDefaults loads, lowest priority first: struct defaults, the YAML
// file at configPath (skipped when empty), then environment variables.
func (l *Loader) LoadWithDefaults(defaults any, configPath string) error {
	if defaults != nil {
		if err := l.k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
			return errors.Wrap(err, "load defaults")
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return errors.Errorf("config file not found: %s", configPath)
		}
		if err := l.k.Load(file.Provider(configPath), koanfyaml.Parser()); err != nil {
			return errors.Wrap(err, "load config file")
		}
	}

	envProvider := env.Provider(l.envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := l.k.Load(envProvider, nil); err != nil {
		return errors.Wrap(err, "load environment variables")
	}

	return nil
}

// LoadLegacyEnv applies unprefixed variables such as CLICKUP_API_KEY unless
// the key was already set by a prefixed variable.
func (l *Loader) LoadLegacyEnv(mappings map[string]string) error {
	for name, key := range mappings {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		prefixed := l.envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
		if _, ok := os.LookupEnv(prefixed); ok {
			continue
		}
		if err := l.k.Set(key, v); err != nil {
			return errors.Wrapf(err, "env %s", name)
		}
	}
	return nil
}

// LoadFlags applies flags the user set explicitly, mapped to config keys.
func (l *Loader) LoadFlags(flags *pflag.FlagSet, mappings map[string]string) error {
	var firstErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := mappings[f.Name]
		if !ok || firstErr != nil {
			return
		}
		if err := l.k.Set(key, f.Value.String()); err != nil {
			firstErr = errors.Wrapf(err, "flag %s", f.Name)
		}
	})
	return firstErr
}

// Unmarshal decodes the configuration at path into out.
func (l *Loader) Unmarshal(path string, out any) error {
	return l.k.Unmarshal(path, out)
}

// DumpYAML writes the merged configuration as YAML.
func (l *Loader) DumpYAML(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(l.k.Raw())
}
