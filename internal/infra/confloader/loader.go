package confloader

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "HASHGUARD_"

// Loader loads configuration from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	flags     map[string]any
	known     map[string]string // env suffix -> koanf path
	loaded    bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithFlags sets values that override every other source, keyed by koanf
// path (e.g. "server.http.addr").
func WithFlags(values map[string]any) Option {
	return func(l *Loader) {
		l.flags = values
	}
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FilePath returns the configured file path.
func (l *Loader) FilePath() string {
	return l.filePath
}

// Load reads file, environment and flags, then unmarshals into target.
// Fields of target that no source sets keep their current value, so
// target should be pre-filled with defaults.
func (l *Loader) Load(target any) error {
	l.known = envKeys(reflect.TypeOf(target))

	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}
	if err := l.LoadEnv(); err != nil {
		return err
	}
	if len(l.flags) > 0 {
		if err := l.LoadMap(l.flags); err != nil {
			return err
		}
	}
	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// LoadFile loads a YAML file. An empty path is a no-op.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads prefixed environment variables.
//
// When Load has seen the target struct, a variable resolves to the field
// whose underscored path matches, so HASHGUARD_MAP_MAX_CHAIN_LENGTH sets
// map.max_chain_length. Unknown variables, or any variable when no target
// is known, map every underscore to a level separator.
func (l *Loader) LoadEnv() error {
	transform := func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		if path, ok := l.known[s]; ok {
			return path
		}
		return strings.ReplaceAll(s, "_", ".")
	}

	if err := l.k.Load(env.Provider(l.envPrefix, ".", transform), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// LoadMap loads configuration from a map keyed by koanf path.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into target using koanf
// struct tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// Get returns a value by key.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// GetString returns a string value.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt returns an int value.
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// GetBool returns a bool value.
func (l *Loader) GetBool(key string) bool {
	return l.k.Bool(key)
}

// IsLoaded reports whether Load has completed.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// All returns the flattened configuration.
func (l *Loader) All() map[string]any {
	return l.k.All()
}

// Keys returns all configuration keys.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}

// envKeys maps the underscored form of every koanf path in t to the path.
func envKeys(t reflect.Type) map[string]string {
	keys := make(map[string]string)
	walkKoanf(t, "", func(path string) {
		keys[strings.ReplaceAll(path, ".", "_")] = path
	})
	return keys
}

func walkKoanf(t reflect.Type, prefix string, fn func(string)) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			walkKoanf(ft, path, fn)
			continue
		}
		fn(path)
	}
}
