package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/AlexandruValeanu/IceBook/pkg/db/queue"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Engine struct {
		Backend     string `yaml:"backend"` // memory or redis
		LogLevel    string `yaml:"log_level"`
		LogFormat   string `yaml:"log_format"`
		PublishExec bool   `yaml:"publish_executions"`
	} `yaml:"engine"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	Kafka struct {
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
	} `yaml:"kafka"`
}

// Default configuration values
var (
	configFile  = flag.String("config", "", "Path to config file (YAML)")
	backendName = flag.String("backend", "memory", "Book backend: memory or redis")
	logLevel    = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat   = flag.String("log_format", "pretty", "Log format: json, pretty")
	publishExec = flag.Bool("publish_executions", false, "Publish execution reports to Kafka")
)

// LoadConfig loads the configuration from command line flags and optionally from a config file
func LoadConfig() (*Config, error) {
	// Parse command line flags
	flag.Parse()

	// Create default configuration
	config := &Config{}
	config.Engine.Backend = *backendName
	config.Engine.LogLevel = *logLevel
	config.Engine.LogFormat = *logFormat
	config.Engine.PublishExec = *publishExec
	config.Redis.Addr = "localhost:6379"
	config.Redis.Prefix = "icebook"
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.Topic = "icebook-executions"

	// Load configuration from file if specified
	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Parse YAML configuration
		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// Log loaded configuration
		log.Printf("Loaded configuration from %s", *configFile)
	}

	if config.Engine.Backend != "memory" && config.Engine.Backend != "redis" {
		return nil, fmt.Errorf("unknown backend %q", config.Engine.Backend)
	}

	// Override Kafka configuration in package variables
	queue.SetBrokerList(config.Kafka.BrokerAddr)
	queue.SetTopic(config.Kafka.Topic)

	return config, nil
}
