package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/truckfactor/internal/decay"
	"github.com/Sumatoshi-tech/truckfactor/internal/factor"
)

// configName is the config file name without extension.
const configName = ".truckfactor"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for settings.
const envPrefix = "TRUCKFACTOR"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("repository.path", ".")
	viperCfg.SetDefault("repository.clone_dir", DefaultCloneDir)

	viperCfg.SetDefault("logs.dir", DefaultLogsDir)
	viperCfg.SetDefault("logs.compress", DefaultLogsCompress)
	viperCfg.SetDefault("logs.workers", DefaultLogsWorkers)

	viperCfg.SetDefault("analysis.critical_loss", factor.DefaultCriticalLoss)
	viperCfg.SetDefault("analysis.metric", MetricKnowledge)

	viperCfg.SetDefault("decay.asymptote", decay.DefaultAsymptote)
	viperCfg.SetDefault("decay.initial_retention", decay.DefaultInitialRetention)
	viperCfg.SetDefault("decay.curvature", decay.DefaultCurvature)

	viperCfg.SetDefault("report.format", FormatConsole)
}
