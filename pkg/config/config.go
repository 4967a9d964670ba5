/*
Package config manages the TOML config for SuggestBox binaries.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bastiangx/suggestbox/internal/utils"
	"github.com/bastiangx/suggestbox/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Client  ClientConfig  `toml:"client"`
	Suggest SuggestConfig `toml:"suggest"`
	Backend BackendConfig `toml:"backend"`
	CLI     CliConfig     `toml:"cli"`
}

// ClientConfig has options for talking to the suggestion endpoint.
type ClientConfig struct {
	Endpoint     string            `toml:"endpoint"`
	QueryParam   string            `toml:"query_param"`
	TimeoutMs    int               `toml:"timeout_ms"`
	Headers      map[string]string `toml:"headers"`
	BenignErrors []string          `toml:"benign_errors"`
}

// SuggestConfig holds the flag driven request params and debounce delays.
type SuggestConfig struct {
	DebounceMs             int    `toml:"debounce_ms"`
	ExperimentalDebounceMs int    `toml:"experimental_debounce_ms"`
	ExperimentalDebounce   bool   `toml:"experimental_debounce"`
	Breakpoint             string `toml:"breakpoint"`
	LimitSmall             int    `toml:"limit_small"`
	LimitLarge             int    `toml:"limit_large"`
	AdMarketplaceToken     string `toml:"admarketplace_token"`
	Mocked                 string `toml:"mocked"`
}

// BackendConfig holds options of the development suggestion backend.
type BackendConfig struct {
	Addr               string `toml:"addr"`
	DataDir            string `toml:"data_dir"`
	MaxLimit           int    `toml:"max_limit"`
	MinPrefix          int    `toml:"min_prefix"`
	MaxPrefix          int    `toml:"max_prefix"`
	MinFreqThreshold   int    `toml:"min_frequency_threshold"`
	MinFreqShortPrefix int    `toml:"min_frequency_short_prefix"`
	StrictInput        bool   `toml:"strict_input"`
	AllowOrigins       string `toml:"allow_origins"`
}

// CliConfig holds terminal search box options.
type CliConfig struct {
	ShowContext bool `toml:"show_context"`
	MaxRows     int  `toml:"max_rows"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/suggestbox
// 2. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", utils.AppDirName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/suggestbox/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Endpoint:     "http://127.0.0.1:7474/suggest",
			QueryParam:   suggest.DefaultQueryParam,
			TimeoutMs:    0,
			Headers:      map[string]string{},
			BenignErrors: append([]string(nil), suggest.DefaultBenignErrors...),
		},
		Suggest: SuggestConfig{
			DebounceMs:             150,
			ExperimentalDebounceMs: 50,
			ExperimentalDebounce:   false,
			Breakpoint:             string(suggest.BreakpointLarge),
			LimitSmall:             5,
			LimitLarge:             8,
		},
		Backend: BackendConfig{
			Addr:               "127.0.0.1:7474",
			DataDir:            "data/",
			MaxLimit:           64,
			MinPrefix:          1,
			MaxPrefix:          60,
			MinFreqThreshold:   1,
			MinFreqShortPrefix: 1,
			StrictInput:        false,
			AllowOrigins:       "*",
		},
		CLI: CliConfig{
			ShowContext: true,
			MaxRows:     10,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, recovering what it can from a broken one
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse falls back to a generic decode and picks known keys
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "client"); ok {
		extractClientConfig(section, &config.Client)
	}
	if section, ok := utils.ExtractSection(tempConfig, "suggest"); ok {
		extractSuggestConfig(section, &config.Suggest)
	}
	if section, ok := utils.ExtractSection(tempConfig, "backend"); ok {
		extractBackendConfig(section, &config.Backend)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractClientConfig(data map[string]any, client *ClientConfig) {
	if val, ok := utils.ExtractString(data, "endpoint"); ok {
		client.Endpoint = val
	}
	if val, ok := utils.ExtractString(data, "query_param"); ok {
		client.QueryParam = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		client.TimeoutMs = val
	}
	if val, ok := utils.ExtractStringMap(data, "headers"); ok {
		client.Headers = val
	}
	if val, ok := utils.ExtractStringSlice(data, "benign_errors"); ok {
		client.BenignErrors = val
	}
}

func extractSuggestConfig(data map[string]any, s *SuggestConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		s.DebounceMs = val
	}
	if val, ok := utils.ExtractInt64(data, "experimental_debounce_ms"); ok {
		s.ExperimentalDebounceMs = val
	}
	if val, ok := utils.ExtractBool(data, "experimental_debounce"); ok {
		s.ExperimentalDebounce = val
	}
	if val, ok := utils.ExtractString(data, "breakpoint"); ok {
		s.Breakpoint = val
	}
	if val, ok := utils.ExtractInt64(data, "limit_small"); ok {
		s.LimitSmall = val
	}
	if val, ok := utils.ExtractInt64(data, "limit_large"); ok {
		s.LimitLarge = val
	}
	if val, ok := utils.ExtractString(data, "admarketplace_token"); ok {
		s.AdMarketplaceToken = val
	}
	if val, ok := utils.ExtractString(data, "mocked"); ok {
		s.Mocked = val
	}
}

func extractBackendConfig(data map[string]any, b *BackendConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		b.Addr = val
	}
	if val, ok := utils.ExtractString(data, "data_dir"); ok {
		b.DataDir = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		b.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		b.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		b.MaxPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency_threshold"); ok {
		b.MinFreqThreshold = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency_short_prefix"); ok {
		b.MinFreqShortPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "strict_input"); ok {
		b.StrictInput = val
	}
	if val, ok := utils.ExtractString(data, "allow_origins"); ok {
		b.AllowOrigins = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_context"); ok {
		cli.ShowContext = val
	}
	if val, ok := utils.ExtractInt64(data, "max_rows"); ok {
		cli.MaxRows = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// Update changes client and suggest values and saves to file
func (c *Config) Update(configPath string, endpoint *string, debounceMs *int, mocked *string) error {
	if endpoint != nil {
		c.Client.Endpoint = *endpoint
	}
	if debounceMs != nil {
		c.Suggest.DebounceMs = *debounceMs
	}
	if mocked != nil {
		c.Suggest.Mocked = *mocked
	}
	return SaveConfig(c, configPath)
}

// Debounce returns the active debounce delay.
func (s SuggestConfig) Debounce() time.Duration {
	ms := s.DebounceMs
	if s.ExperimentalDebounce && s.ExperimentalDebounceMs > 0 {
		ms = s.ExperimentalDebounceMs
	}
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// ParamOptions maps the suggest section onto request param options.
func (c *Config) ParamOptions() suggest.ParamOptions {
	bp := suggest.Breakpoint(strings.ToLower(c.Suggest.Breakpoint))
	if bp != suggest.BreakpointSmall {
		bp = suggest.BreakpointLarge
	}
	return suggest.ParamOptions{
		QueryParam: c.Client.QueryParam,
		Breakpoint: bp,
		Limits: map[suggest.Breakpoint]int{
			suggest.BreakpointSmall: c.Suggest.LimitSmall,
			suggest.BreakpointLarge: c.Suggest.LimitLarge,
		},
		AdMarketplaceToken: c.Suggest.AdMarketplaceToken,
		Mocked:             c.Suggest.Mocked,
	}
}

// FetcherOptions maps the client section onto fetcher options.
func (c *Config) FetcherOptions() suggest.FetcherOptions {
	return suggest.FetcherOptions{
		Headers:      c.Client.Headers,
		BenignErrors: c.Client.BenignErrors,
		Timeout:      time.Duration(c.Client.TimeoutMs) * time.Millisecond,
	}
}
