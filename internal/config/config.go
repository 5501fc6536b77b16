// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/ollama-chat/internal/util"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the user-editable configuration. The JSON form with api_url,
// theme and autosave is the primary on-disk format.
type Config struct {
	// APIURL is the Ollama server base URL.
	APIURL string `json:"api_url" toml:"api_url" yaml:"api_url"`

	// Theme is "Light" or "Dark".
	Theme string `json:"theme" toml:"theme" yaml:"theme"`

	// Autosave writes saved chats back every few minutes.
	Autosave bool `json:"autosave" toml:"autosave" yaml:"autosave"`

	// DefaultModel is preselected when a chat starts. Empty means the
	// first installed model.
	DefaultModel string `json:"default_model,omitempty" toml:"default_model,omitempty" yaml:"default_model,omitempty"`

	Log LogConfig `json:"log,omitzero" toml:"log" yaml:"log,omitempty"`

	// source is the file the config was loaded from, if any.
	source string
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string `json:"level,omitempty" toml:"level,omitempty" yaml:"level,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" toml:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" toml:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" toml:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
}

// Theme names.
const (
	ThemeLight = "Light"
	ThemeDark  = "Dark"
)

// DefaultAPIURL is the address of a local Ollama server.
const DefaultAPIURL = "http://localhost:11434"

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		Theme:    ThemeLight,
		Autosave: false,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.APIURL == "" {
		cfg.APIURL = defaults.APIURL
	}
	if cfg.Theme == "" {
		cfg.Theme = defaults.Theme
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = defaults.Log.MaxBackups
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = defaults.Log.MaxAgeDays
	}
}

// normalize canonicalizes values that are accepted case-insensitively.
func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case "light":
		c.Theme = ThemeLight
	case "dark":
		c.Theme = ThemeDark
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

// =============================================================================
// PATHS
// =============================================================================

// Paths locates the per-user files.
type Paths struct {
	ConfigDir string
	ChatsDir  string
	LogDir    string
}

// DirName is the per-user directory under the home directory.
const DirName = ".ollama_chat"

// DefaultPaths returns the paths under ~/.ollama_chat.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("could not determine home directory: %w", err)
	}
	return PathsIn(filepath.Join(home, DirName)), nil
}

// PathsIn returns the standard layout rooted at dir.
func PathsIn(dir string) Paths {
	return Paths{
		ConfigDir: dir,
		ChatsDir:  filepath.Join(dir, "chats"),
		LogDir:    filepath.Join(dir, "logs"),
	}
}

// JSONFile is the primary config file.
func (p Paths) JSONFile() string { return filepath.Join(p.ConfigDir, "config.json") }

// TOMLFile is read when no JSON file exists.
func (p Paths) TOMLFile() string { return filepath.Join(p.ConfigDir, "config.toml") }

// YAMLFile is read when neither JSON nor TOML exists.
func (p Paths) YAMLFile() string { return filepath.Join(p.ConfigDir, "config.yaml") }

// LogFile is the rotating log file.
func (p Paths) LogFile() string { return filepath.Join(p.LogDir, "ollama-chat.log") }

// EnsureDirs creates every directory.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.ConfigDir, p.ChatsDir, p.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads config.json, else config.toml, else config.yaml from
// p.ConfigDir, then applies environment overrides and validates.
//
// A file that exists but cannot be decoded is skipped and reported in the
// returned error together with a usable config (the next format or the
// defaults). A config that fails validation returns nil.
func Load(p Paths) (*Config, error) {
	cfg, loadErr := LoadFile(p)

	cfg.ApplyEnvOverrides()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, loadErr
}

// LoadFile reads the first decodable config file with defaults filled in,
// without environment overrides or validation. The result is never nil.
func LoadFile(p Paths) (*Config, error) {
	var loadErr error

	candidates := []struct {
		path   string
		decode func(*Config, string) error
	}{
		{p.JSONFile(), LoadJSON},
		{p.TOMLFile(), LoadTOML},
		{p.YAMLFile(), LoadYAML},
	}

	cfg := Default()
	for _, c := range candidates {
		if _, err := os.Stat(c.path); err != nil {
			continue
		}
		fileCfg := &Config{}
		if err := c.decode(fileCfg, c.path); err != nil {
			loadErr = errors.Join(loadErr, err)
			continue
		}
		cfg = fileCfg
		cfg.source = c.path
		break
	}

	fillDefaults(cfg)
	cfg.normalize()
	return cfg, loadErr
}

// LoadJSON decodes a JSON config file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file %s: %w", path, err)
	}
	return nil
}

// LoadTOML decodes a TOML config file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	return nil
}

// LoadYAML decodes a YAML config file into cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	return nil
}

// Source returns the file the config came from, or "" for defaults.
func (c *Config) Source() string {
	return c.source
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg as JSON to p.JSONFile(), which takes precedence over
// any TOML or YAML file on the next Load.
func Save(cfg *Config, p Paths) error {
	if err := SaveJSON(cfg, p.JSONFile()); err != nil {
		return err
	}
	cfg.source = p.JSONFile()
	return nil
}

// SaveJSON writes cfg to path atomically, readable by the owner only.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')

	if err := util.AtomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.APIURL); err != nil {
		errs = append(errs, ValidationError{Field: "api_url", Message: err.Error()})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "api_url", Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{Field: "api_url", Message: "missing host"})
	}

	if c.Theme != ThemeLight && c.Theme != ThemeDark {
		errs = append(errs, ValidationError{Field: "theme", Message: fmt.Sprintf("invalid theme %q, must be Light or Dark", c.Theme)})
	}

	if c.Log.Level != "" && !validLogLevels[c.Log.Level] {
		errs = append(errs, ValidationError{Field: "log.level", Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", c.Log.Level)})
	}
	if c.Log.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{Field: "log.max_size_mb", Message: "must not be negative"})
	}
	if c.Log.MaxBackups < 0 {
		errs = append(errs, ValidationError{Field: "log.max_backups", Message: "must not be negative"})
	}
	if c.Log.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{Field: "log.max_age_days", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - OLLAMA_CHAT_API_URL: overrides api_url
//   - OLLAMA_CHAT_THEME: overrides theme
//   - OLLAMA_CHAT_AUTOSAVE: "1"/"true"/"yes" enables autosave, anything else disables it
//   - OLLAMA_CHAT_MODEL: overrides default_model
//   - OLLAMA_CHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("OLLAMA_CHAT_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("OLLAMA_CHAT_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("OLLAMA_CHAT_AUTOSAVE"); v != "" {
		c.Autosave = parseBool(v)
	}
	if v := os.Getenv("OLLAMA_CHAT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("OLLAMA_CHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Keys returns every settable key in dot notation.
func Keys() []string {
	return []string{
		"api_url",
		"theme",
		"autosave",
		"default_model",
		"log.level",
		"log.max_size_mb",
		"log.max_backups",
		"log.max_age_days",
	}
}

// Get retrieves a value by dot-notation key, e.g. "log.level".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by dot-notation key, converting strings to the
// field's type, then normalizes and validates the result. On a
// validation failure the config is left unchanged.
func (c *Config) Set(key string, value string) error {
	next := *c
	field, err := next.lookup(key)
	if err != nil {
		return err
	}
	if err := setFieldValue(field, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	next.normalize()
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() || !field.CanSet() {
			return reflect.Value{}, fmt.Errorf("unknown key: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("key %q is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("key %q is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer value %q", value)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			b = parseBool(value)
			if !b && !isFalseWord(value) {
				return fmt.Errorf("invalid boolean value %q", value)
			}
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type %s", field.Type())
	}
	return nil
}

func isFalseWord(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "false", "no", "off":
		return true
	}
	return false
}

// =============================================================================
// DISPLAY
// =============================================================================

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// String renders the config as YAML for display.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(data)
}
