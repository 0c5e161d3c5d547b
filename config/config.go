package config

import (
    "log"
    "os"
    "strconv"

    "github.com/joho/godotenv"

    "supermarket-pos-api/database"
    "supermarket-pos-api/services/email"
    "supermarket-pos-api/services/mpesa"
)

type Config struct {
    Database   database.DatabaseConfig
    Mpesa      mpesa.Config
    SMTP       email.SMTPConfig
    Server     ServerConfig
    Session    SessionConfig
    Redis      RedisConfig
    AlertEmail string
}

type ServerConfig struct {
    Port string
}

type SessionConfig struct {
    Secret string
    MaxAge int
}

type RedisConfig struct {
    URL               string
    WorkerConcurrency int
}

func Load() *Config {
    if err := godotenv.Load(); err != nil {
        log.Printf("Warning: Error loading .env file: %v", err)
    }

    cfg := &Config{
        Database: database.DatabaseConfig{
            Host:     os.Getenv("DB_HOST"),
            User:     os.Getenv("DB_USER"),
            Password: os.Getenv("DB_PASSWORD"),
            DBName:   os.Getenv("DB_NAME"),
        },
        Mpesa: mpesa.Config{
            ConsumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
            ConsumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
            ShortCode:      os.Getenv("MPESA_SHORTCODE"),
            PassKey:        os.Getenv("MPESA_PASSKEY"),
            Environment:    os.Getenv("MPESA_ENVIRONMENT"),
            CallbackURL:    os.Getenv("MPESA_CALLBACK_URL"),
        },
        SMTP: email.SMTPConfig{
            Host:     os.Getenv("SMTP_HOST"),
            Port:     os.Getenv("SMTP_PORT"),
            Username: os.Getenv("SMTP_USER"),
            Password: os.Getenv("SMTP_PASSWORD"),
            From:     os.Getenv("SMTP_FROM"),
        },
        Server: ServerConfig{
            Port: os.Getenv("SERVER_PORT"),
        },
        Session: SessionConfig{
            Secret: os.Getenv("SESSION_SECRET"),
            MaxAge: 3600,
        },
        Redis: RedisConfig{
            URL:               os.Getenv("REDIS_URL"),
            WorkerConcurrency: 2,
        },
        AlertEmail: os.Getenv("ALERT_EMAIL"),
    }

    if raw := os.Getenv("WORKER_CONCURRENCY"); raw != "" {
        if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
            cfg.Redis.WorkerConcurrency = parsed
        } else {
            log.Printf("Warning: invalid WORKER_CONCURRENCY %q, using default %d", raw, cfg.Redis.WorkerConcurrency)
        }
    }

    if cfg.Server.Port == "" {
        cfg.Server.Port = "8080"
    }

    if cfg.Redis.URL == "" {
        cfg.Redis.URL = "redis://localhost:6379/0"
        log.Printf("Warning: REDIS_URL not set, using default: %s", cfg.Redis.URL)
    }

    // Safaricom sandbox test shortcode.
    if cfg.Mpesa.ShortCode == "" {
        cfg.Mpesa.ShortCode = "174379"
    }
    if cfg.Mpesa.Environment == "" {
        cfg.Mpesa.Environment = "sandbox"
    }

    if cfg.Session.Secret == "" {
        log.Printf("Warning: SESSION_SECRET not set, sessions will not survive restarts")
    }

    log.Printf("Config loaded: environment=%s shortcode=%s port=%s",
        cfg.Mpesa.Environment, cfg.Mpesa.ShortCode, cfg.Server.Port)

    return cfg
}
