package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/profileport/profileport/internal/fsutil"
	"github.com/profileport/profileport/internal/osutil"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "profileport"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "PROFILEPORT"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// Hash settings
	Hash struct {
		Algorithm string `mapstructure:"algorithm"` // sha256, sha512, blake2b256, sha3-256
	} `mapstructure:"hash"`

	// Backup settings
	Backup struct {
		TempDir  string `mapstructure:"temp_dir"`  // Scratch space for staging trees
		SkipHash bool   `mapstructure:"skip_hash"` // Build size-only manifests
	} `mapstructure:"backup"`

	// Restore settings
	Restore struct {
		Overwrite   bool `mapstructure:"overwrite"`    // Replace existing destination files
		AutoConfirm bool `mapstructure:"auto_confirm"` // Create missing directories without prompting
	} `mapstructure:"restore"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	// Viper instance
	v *viper.Viper

	// Ensure thread safety
	initOnce sync.Once
)

// Initialize sets up the configuration system
func Initialize(cfgFile string) error {
	var err error

	initOnce.Do(func() {
		v = viper.New()

		setDefaults(v)

		// Load configuration from file if specified
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
		} else {
			v.SetConfigName(AppName)
			v.SetConfigType("yaml")
			addSearchPaths(v)
		}

		// Set up environment variables
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()

		// Read configuration file
		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				// Only capture error if the config file was found but couldn't be read
				err = fmt.Errorf("error reading config file: %w", readErr)
			}
			// Config file not found, using defaults and environment variables
			ConfigLoaded = false
			ConfigFile = ""
		} else {
			ConfigLoaded = true
			ConfigFile = v.ConfigFileUsed()
		}

		// Unmarshal config into struct
		if unmarshalErr := v.Unmarshal(&Instance); unmarshalErr != nil {
			err = fmt.Errorf("error parsing config: %w", unmarshalErr)
			return
		}

		ensureDirectories()
	})

	return err
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")

	// Set default log file based on OS
	logDir, err := fsutil.GetLogDir(AppName)
	if err == nil {
		v.SetDefault("log_file", filepath.Join(logDir, "profileport.log"))
	} else {
		v.SetDefault("log_file", "logs/profileport.log")
	}

	// Hash defaults: 256-bit digest is the reference strength
	v.SetDefault("hash.algorithm", "sha256")

	// Backup defaults
	tempDir, err := fsutil.GetTempDir(AppName)
	if err == nil {
		v.SetDefault("backup.temp_dir", tempDir)
	} else {
		v.SetDefault("backup.temp_dir", "temp")
	}
	v.SetDefault("backup.skip_hash", false)

	// Restore defaults
	v.SetDefault("restore.overwrite", false)
	v.SetDefault("restore.auto_confirm", false)
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")

	// Check for development environment
	if osutil.IsDevEnvironment() {
		// In dev mode, only use current directory and user home
		configDir, err := fsutil.GetConfigDir(AppName)
		if err == nil {
			v.AddConfigPath(configDir)
		}
		return
	}

	// Check for CI/Pipeline environment
	if isRunningInPipeline() {
		v.AddConfigPath("/etc/" + AppName)
		return
	}

	// Standard operation - add user config directory
	configDir, err := fsutil.GetConfigDir(AppName)
	if err == nil {
		v.AddConfigPath(configDir)
	}

	// Add system-wide config directory
	systemConfigDir, err := fsutil.GetSystemConfigDir(AppName)
	if err == nil {
		v.AddConfigPath(systemConfigDir)
	}
}

// ensureDirectories creates necessary directories based on configuration
func ensureDirectories() {
	// Don't create directories in a pipeline environment unless explicitly requested
	if isRunningInPipeline() {
		return
	}

	if Instance.LogFile != "" {
		_ = fsutil.CreateDirIfNotExists(filepath.Dir(Instance.LogFile))
	}

	if Instance.Backup.TempDir != "" {
		_ = fsutil.CreateDirIfNotExists(Instance.Backup.TempDir)
	}
}

// isRunningInPipeline returns true if running in a CI/CD pipeline environment
func isRunningInPipeline() bool {
	return osutil.IsCIEnvironment()
}
