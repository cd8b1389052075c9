package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath string         `yaml:"storage_path" env:"STORAGE_PATH" env-default:"data/emergencybox.db"`
	HTTPServer  HTTPServer     `yaml:"http_server"`
	Uploads     UploadsConfig  `yaml:"uploads"`
	Messages    MessagesConfig `yaml:"messages"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"15m"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type UploadsConfig struct {
	Root        string `yaml:"root" env:"UPLOAD_ROOT" env-default:"uploads"`
	MaxFileSize int64  `yaml:"max_file_size" env:"MAX_FILE_SIZE" env-default:"5368709120"`
}

type MessagesConfig struct {
	ListLimit int `yaml:"list_limit" env-default:"100"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
		return &cfg
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config %s", err)
	}

	return &cfg
}
