// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"strata/pkg/common"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	ConfigFileName = "config"
	ConfigFileType = "yaml"
	ConfigDirName  = "strata"
	EnvPrefix      = "STRATA"
)

// Credentials and defaults for one S3-compatible provider
type ProviderSettings struct {
	Region    string `mapstructure:"region" yaml:"region,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket,omitempty"`
}

type GCPSettings struct {
	ProviderSettings `mapstructure:",squash" yaml:",inline"`
	// Project enables native bucket inspection and usage metrics through the GCS and Monitoring APIs
	Project string `mapstructure:"project" yaml:"project,omitempty"`
}

type QuerySettings struct {
	Format  string `mapstructure:"format" yaml:"format,omitempty"`
	Threads int    `mapstructure:"threads" yaml:"threads,omitempty"`
}

type Config struct {
	AWS       *ProviderSettings `mapstructure:"aws" yaml:"aws,omitempty"`
	Linode    *ProviderSettings `mapstructure:"linode" yaml:"linode,omitempty"`
	Backblaze *ProviderSettings `mapstructure:"backblaze" yaml:"backblaze,omitempty"`
	GCP       *GCPSettings      `mapstructure:"gcp" yaml:"gcp,omitempty"`
	Query     QuerySettings     `mapstructure:"query" yaml:"query,omitempty"`
}

var providerFields = []string{"region", "access_key", "secret_key", "bucket"}

// Every key accepted by 'config set', in dot notation
func KnownKeys() []string {
	var keys []string
	for _, p := range common.SupportedProviders() {
		for _, f := range providerFields {
			keys = append(keys, p+"."+f)
		}
	}
	keys = append(keys, "gcp.project", "query.format", "query.threads")
	sort.Strings(keys)
	return keys
}

func isKnownKey(key string) bool {
	for _, k := range KnownKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Settings returns the provider block, or nil when the provider has no configuration
func (c *Config) Settings(p common.Provider) *ProviderSettings {
	switch p {
	case common.AWS:
		return c.AWS
	case common.Linode:
		return c.Linode
	case common.Backblaze:
		return c.Backblaze
	case common.GCP:
		if c.GCP == nil {
			return nil
		}
		return &c.GCP.ProviderSettings
	default:
		return nil
	}
}

// Builds the gateway configuration for a provider. A non-empty bucket overrides the configured default
func (c *Config) ProviderConfig(providerName, bucket string) (common.ProviderConfig, error) {
	p, err := common.ParseProvider(providerName)
	if err != nil {
		return common.ProviderConfig{}, err
	}

	pc := common.ProviderConfig{Provider: p, Bucket: bucket}
	if s := c.Settings(p); s != nil {
		pc.Region = s.Region
		pc.AccessKey = s.AccessKey
		pc.SecretKey = s.SecretKey
		if pc.Bucket == "" {
			pc.Bucket = s.Bucket
		}
	}
	return pc, nil
}

// Returns a copy with the secret keys masked, for display
func (c *Config) Redacted() *Config {
	redact := func(s *ProviderSettings) *ProviderSettings {
		if s == nil {
			return nil
		}
		cp := *s
		if cp.SecretKey != "" {
			cp.SecretKey = "********"
		}
		return &cp
	}

	out := &Config{
		AWS:       redact(c.AWS),
		Linode:    redact(c.Linode),
		Backblaze: redact(c.Backblaze),
		Query:     c.Query,
	}
	if c.GCP != nil {
		out.GCP = &GCPSettings{ProviderSettings: *redact(&c.GCP.ProviderSettings), Project: c.GCP.Project}
	}
	return out
}

type ConfigManager struct {
	v          *viper.Viper
	configPath string
}

// Creates a manager for ~/.config/strata/config.yaml
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error getting user home directory: %w", err)
	}
	return NewConfigManagerAt(filepath.Join(homeDir, ".config", ConfigDirName))
}

// Creates a manager whose config file lives in dir
func NewConfigManagerAt(dir string) (*ConfigManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(dir)

	// STRATA_AWS_SECRET_KEY overrides aws.secret_key, and so on
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range KnownKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return &ConfigManager{
		v:          v,
		configPath: filepath.Join(dir, ConfigFileName+"."+ConfigFileType),
	}, nil
}

func (m *ConfigManager) ConfigPath() string {
	return m.configPath
}

func (m *ConfigManager) LoadConfig() (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		trimSpaceHook,
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := m.v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return &cfg, nil
}

func (m *ConfigManager) SetValue(key, value string) error {
	key = strings.ToLower(key)
	if !isKnownKey(key) {
		return fmt.Errorf("unknown config key: %s. Known keys are: %s", key, strings.Join(KnownKeys(), ", "))
	}
	return m.persist(key, value)
}

func (m *ConfigManager) GetValue(key string) (string, bool) {
	key = strings.ToLower(key)
	if !m.v.IsSet(key) {
		return "", false
	}
	return m.v.GetString(key), true
}

func (m *ConfigManager) DeleteValue(key string) (bool, error) {
	value, exists := m.GetValue(key)
	if !exists || value == "" {
		return false, nil
	}

	// Viper cannot unset a key, an empty value reads back as unset for every consumer
	if err := m.persist(strings.ToLower(key), ""); err != nil {
		return false, err
	}
	return true, nil
}

func (m *ConfigManager) GetAllSettings() map[string]interface{} {
	return m.v.AllSettings()
}

// Writes a single key through a file-only viper so environment overrides never land on disk
func (m *ConfigManager) persist(key, value string) error {
	fileV := viper.New()
	fileV.SetConfigFile(m.configPath)
	fileV.SetConfigType(ConfigFileType)
	if _, err := os.Stat(m.configPath); err == nil {
		if err := fileV.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	fileV.Set(key, value)
	if err := fileV.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	// The file holds secret keys
	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("error restricting config file permissions: %w", err)
	}

	m.v.Set(key, value)
	return nil
}

func trimSpaceHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(data.(string)), nil
}
