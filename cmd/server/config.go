package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/warp/loan-engine/logging"
)

// Config is the server configuration. Flags override environment variables,
// which override defaults.
type Config struct {
	Port     int
	LogLevel string
	Scenario string
	EnvFile  string
}

// LoadConfig parses args. When -env-file names a file, it is loaded into the
// environment before defaults are read; variables already set win.
func LoadConfig(args []string, output io.Writer) (*Config, error) {
	envFile := envFileArg(args)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{EnvFile: envFile}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.Port, "port", getEnvInt("LOAN_ENGINE_PORT", 8080), "HTTP server port")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOAN_ENGINE_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Scenario, "scenario", getEnv("LOAN_ENGINE_SCENARIO", ""), "Demo scenario to load at startup")
	fs.StringVar(&cfg.EnvFile, "env-file", envFile, "Optional .env file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(errs, "; "))
	}
	return nil
}

// envFileArg finds -env-file before the flag set is built, since the file
// supplies the other flags' defaults.
func envFileArg(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "env-file" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
