package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type ArchiveConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Bucket     string        `mapstructure:"bucket"`
	Region     string        `mapstructure:"region"`
	PathPrefix string        `mapstructure:"path_prefix"`
	Interval   time.Duration `mapstructure:"interval"`
}

type SeedConfig struct {
	Tables      int `mapstructure:"tables"`
	MenuItems   int `mapstructure:"menu_items"`
	MinCapacity int `mapstructure:"min_capacity"`
	MaxCapacity int `mapstructure:"max_capacity"`
}

type Config struct {
	BranchID        string        `mapstructure:"branch_id"`
	TaxRate         float64       `mapstructure:"tax_rate"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	Storage         string        `mapstructure:"storage"` // "postgres" or "file"
	DataDir         string        `mapstructure:"data_dir"`
	KafkaEnabled    bool          `mapstructure:"kafka_enabled"`
	KafkaBrokerList string        `mapstructure:"kafka_broker_list"`
	EventLogEnabled bool          `mapstructure:"event_log_enabled"`
	ConsoleEvents   bool          `mapstructure:"console_events"`
	EventDir        string        `mapstructure:"event_dir"` // non-empty enables the per-topic file feed

	Postgres DatabaseConfig `mapstructure:"postgres"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	viper.SetDefault("tax_rate", 0.08)
	viper.SetDefault("poll_interval", "10s")
	viper.SetDefault("storage", "file")
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("seed.tables", 20)
	viper.SetDefault("seed.menu_items", 40)
	viper.SetDefault("seed.min_capacity", 2)
	viper.SetDefault("seed.max_capacity", 10)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
