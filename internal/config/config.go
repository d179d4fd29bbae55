package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Lab configures container provisioning for lab sandboxes.
type Lab struct {
	Image        string
	InternalPort int
	Host         string
	PortMin      int
	PortMax      int
	ReadyTimeout time.Duration
	PollInterval time.Duration
	IdleTTL      time.Duration
	ReapInterval time.Duration
}

// Runner configures the external code-execution service.
type Runner struct {
	BaseURL string
	Timeout time.Duration
}

type Auth struct {
	Secret string
}

type Config struct {
	HTTP   HTTP
	Redis  Redis
	Lab    Lab
	Runner Runner
	Auth   Auth
}

func FromEnv() (Config, error) {
	http := HTTP{
		Host:            getEnv("HTTP_HOST", "0.0.0.0"),
		Port:            getInt("HTTP_PORT", 4000),
		ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	redis := Redis{
		Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getInt("REDIS_DB", 0),
	}

	lab := Lab{
		Image:        getEnv("LAB_IMAGE", "codeplay-lab:latest"),
		InternalPort: getInt("LAB_INTERNAL_PORT", 4173),
		Host:         getEnv("LAB_HOST", "localhost"),
		PortMin:      getInt("LAB_PORT_MIN", 55000),
		PortMax:      getInt("LAB_PORT_MAX", 55999),
		ReadyTimeout: getDuration("LAB_READY_TIMEOUT", 3*time.Second),
		PollInterval: getDuration("LAB_POLL_INTERVAL", 150*time.Millisecond),
		IdleTTL:      getDuration("LAB_IDLE_TTL", 2*time.Hour),
		ReapInterval: getDuration("LAB_REAP_INTERVAL", 5*time.Minute),
	}

	runner := Runner{
		BaseURL: getEnv("RUNNER_BASE_URL", "https://ce.judge0.com"),
		Timeout: getDuration("RUNNER_TIMEOUT", 30*time.Second),
	}

	auth := Auth{
		Secret: getEnv("AUTH_SECRET", ""),
	}

	if http.Port <= 0 || http.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", http.Port)
	}
	if err := validateLab(lab); err != nil {
		return Config{}, err
	}
	if auth.Secret == "" {
		return Config{}, fmt.Errorf("AUTH_SECRET must be set")
	}

	return Config{HTTP: http, Redis: redis, Lab: lab, Runner: runner, Auth: auth}, nil
}

func validateLab(lab Lab) error {
	if lab.PortMin <= 0 || lab.PortMax > 65535 || lab.PortMin > lab.PortMax {
		return fmt.Errorf("invalid lab port range: %d-%d", lab.PortMin, lab.PortMax)
	}
	if lab.InternalPort <= 0 || lab.InternalPort > 65535 {
		return fmt.Errorf("invalid lab internal port: %d", lab.InternalPort)
	}
	if lab.ReadyTimeout <= 0 {
		return fmt.Errorf("lab ready timeout must be positive")
	}
	if lab.PollInterval <= 0 || lab.PollInterval > lab.ReadyTimeout {
		return fmt.Errorf("lab poll interval must be positive and within the ready timeout")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
