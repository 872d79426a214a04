package devserver

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the development backend settings. Values come from an
// optional YAML file and are overridden by environment variables.
type Config struct {
	Addr    string `yaml:"addr" env:"ANNOTATE_ADDR" env-default:":5695"`
	DataDir string `yaml:"data_dir" env:"ANNOTATE_DATA_DIR" env-default:"data"`
}

// LoadConfig reads path (when non-empty) and the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
