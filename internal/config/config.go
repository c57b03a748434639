package config // package config loads application configuration from environment variables

import (
    "log" // log is used to report configuration errors and halt execution
    "os"  // os provides access to environment variables
    "strings"

    "github.com/joho/godotenv"
)

// Config holds the process level configuration.  Each field corresponds to
// an environment variable.  DB fields are only required when UserStore is
// "mysql".
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    UserStore string // profile backend: memory, mysql or redis
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    LogLevel  string // debug, info, warn or error
    LogFormat string // text or json
}

// Load reads a .env file when one exists, then builds a Config from the
// environment.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
func Load() Config {
    _ = godotenv.Load()

    cfg := Config{
        Env:       envStr("APP_ENV", "dev"),
        Port:      must("APP_PORT"),
        UserStore: strings.ToLower(envStr("USER_STORE", "memory")),
        LogLevel:  envStr("LOG_LEVEL", "info"),
        LogFormat: envStr("LOG_FORMAT", "text"),
    }
    switch cfg.UserStore {
    case "mysql":
        cfg.DBUser = must("DB_USER")
        cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = must("DB_PORT")
        cfg.DBName = must("DB_NAME")
    case "memory", "redis":
    default:
        log.Fatalf("invalid USER_STORE: %q", cfg.UserStore)
    }
    return cfg
}

// AMQPURL returns the broker URL used for reservation notices.  An empty
// string disables publishing.
func AMQPURL() string {
    return os.Getenv("RABBITMQ_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
