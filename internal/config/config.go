package config

import (
	"fmt"
	"os"
)

type Config struct {
	DBSource  string
	Port      string
	Custodian string
	Admin     string
	Env       string
}

func Load() (*Config, error) {
	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	custodian := os.Getenv("CUSTODIAN_ID")
	if custodian == "" {
		custodian = "vault"
	}

	admin := os.Getenv("ADMIN_ID")
	if admin == "" {
		admin = "admin"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &Config{
		DBSource:  dbSource,
		Port:      port,
		Custodian: custodian,
		Admin:     admin,
		Env:       env,
	}, nil
}
