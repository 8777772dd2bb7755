package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultRows    = 50
	DefaultColumns = 26
	EnvPrefix      = "RCSHEET"
)

// Config represents the front-end configuration
type Config struct {
	Sheet  *Sheet
	Logger *Logger
	Viper  *viper.Viper
}

// Sheet sheet config struct
type Sheet struct {
	Rows    int
	Columns int
}

// Logger logger config struct
type Logger struct {
	Level  string
	Format string
}

// flagKeys maps config keys to the command-line flags that override them
var flagKeys = map[string]string{
	"sheet.rows":    "rows",
	"sheet.columns": "columns",
	"logger.level":  "log-level",
	"logger.format": "log-format",
}

// LoadConfig reads configuration from, lowest priority first: built-in
// defaults, the config file, RCSHEET_* environment variables and flags.
// an explicit configPath must exist; otherwise rcsheet.yaml is looked up in
// the working directory and $HOME/.rcsheet and may be absent.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("sheet.rows", DefaultRows)
	v.SetDefault("sheet.columns", DefaultColumns)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("rcsheet")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rcsheet")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Sheet:  getSheetConfig(v),
		Logger: getLoggerConfig(v),
		Viper:  v,
	}
	if cfg.Sheet.Rows < 0 || cfg.Sheet.Columns < 0 {
		return nil, fmt.Errorf("sheet dimensions must not be negative: %dx%d", cfg.Sheet.Rows, cfg.Sheet.Columns)
	}

	return cfg, nil
}

func getSheetConfig(v *viper.Viper) *Sheet {
	return &Sheet{
		Rows:    v.GetInt("sheet.rows"),
		Columns: v.GetInt("sheet.columns"),
	}
}

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:  v.GetString("logger.level"),
		Format: v.GetString("logger.format"),
	}
}
