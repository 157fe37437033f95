package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sockbridge/sockbridge-go/core"
	"github.com/sockbridge/sockbridge-go/logger"
	"github.com/spf13/viper"
)

func main() {
	configPath := flag.String("c", "", "Path to config file (default searches ./config.yaml, /etc/sockbridge/config.yaml, etc.)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := initLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Info("Shutting down sockbridge")

	client, err := core.NewClient(cfg, logger.Logger())
	if err != nil {
		logger.Error("Failed to create client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close client", "error", err)
		}
	}()

	client.On(core.EventConnect, func(error) {
		logger.Info("Session established")
	})
	client.On(core.EventDisconnect, func(error) {
		logger.Info("Session closed")
	})
	client.On(core.EventError, func(err error) {
		logger.Error("Session error", "error", err)
	})

	client.Connect(cfg.Server.Token)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received signal, shutting down", "signal", sig)
	client.Disconnect()
}

// loadConfig reads the YAML configuration. A missing file is fine, the
// built-in defaults apply.
func loadConfig(configPath string) (core.Config, error) {
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/sockbridge")
	}

	viper.SetDefault("server.url", core.DefaultServerURL)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.outputs", []string{"stdout"})

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return core.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg core.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return core.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the logging system.
func initLogger(cfg core.Config) error {
	logCfg := logger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: cfg.Logging.Outputs,
	}

	if viper.GetBool("debug") {
		logCfg.Level = "debug"
		logCfg.Outputs = []string{"stdout"}
	}

	return logger.Init(logCfg)
}
