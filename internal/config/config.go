package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Defaults are chosen so that the server
// starts against a local SQLite file with no environment at all.
type Config struct {
	Env        string // application environment (e.g. "dev", "prod")
	Port       string // HTTP port to listen on
	LogLevel   string // zap logger selection ("debug" enables the dev logger)
	DBDriver   string // "sqlite" or "mysql"
	SQLitePath string // path of the SQLite database file
	DBUser     string // mysql username
	DBPass     string // mysql password (optional)
	DBHost     string // mysql host address
	DBPort     string // mysql port number
	DBName     string // mysql database name
	BcryptCost int    // bcrypt cost for password hashing
}

// Load reads a .env file if one exists and then builds the Config from
// the environment. Only the mysql settings are required, and only when
// DB_DRIVER selects mysql.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := Config{
		Env:        getenv("APP_ENV", "dev"),
		Port:       getenv("PORT", "4000"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		DBDriver:   getenv("DB_DRIVER", "sqlite"),
		SQLitePath: getenv("SQLITE_PATH", "cms.db"),
		DBUser:     os.Getenv("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBName:     os.Getenv("DB_NAME"),
		BcryptCost: getenvInt("BCRYPT_COST", 10),
	}

	if cfg.DBDriver == "mysql" {
		mustSet("DB_USER", cfg.DBUser)
		mustSet("DB_HOST", cfg.DBHost)
		mustSet("DB_PORT", cfg.DBPort)
		mustSet("DB_NAME", cfg.DBName)
	}
	return cfg
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

// mustSet halts startup when a variable required by the selected driver
// is missing.
func mustSet(key, val string) {
	if val == "" {
		log.Fatalf("missing required env var: %s", key)
	}
}
