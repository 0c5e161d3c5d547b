package database

import (
    "context"
    "database/sql"
    "fmt"
    "log"
    "time"
)

type DatabaseConfig struct {
    Host     string
    User     string
    Password string
    DBName   string
}

type Connection struct {
    db *sql.DB
}

func NewConnection(config DatabaseConfig) (*Connection, error) {
    dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
        config.User, config.Password, config.Host, config.DBName)

    db, err := sql.Open("mysql", dsn)
    if err != nil {
        return nil, fmt.Errorf("failed to connect to database: %v", err)
    }

    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(5 * time.Minute)
    db.SetConnMaxIdleTime(5 * time.Minute)

    conn := &Connection{db: db}

    if err := conn.ensureConnection(); err != nil {
        db.Close()
        return nil, err
    }

    return conn, nil
}

func (c *Connection) ensureConnection() error {
    for retries := 0; retries < 3; retries++ {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        err := c.db.PingContext(ctx)
        cancel()

        if err == nil {
            return nil
        }

        log.Printf("Database ping failed (attempt %d/3): %v", retries+1, err)
        time.Sleep(time.Second * time.Duration(retries+1))
    }
    return fmt.Errorf("failed to establish database connection after 3 attempts")
}

func (c *Connection) Close() error {
    return c.db.Close()
}

func (c *Connection) Ping() error {
    return c.ensureConnection()
}

func (c *Connection) GetDB() *sql.DB {
    return c.db
}

// BeginSale opens the write transaction covering a full sale: the
// transaction row, its items, the stock movements and the stock decrements.
func (c *Connection) BeginSale() (*SaleTx, error) {
    if err := c.ensureConnection(); err != nil {
        return nil, fmt.Errorf("database connection check failed: %v", err)
    }

    tx, err := c.db.Begin()
    if err != nil {
        return nil, fmt.Errorf("failed to begin transaction: %v", err)
    }
    return &SaleTx{tx: tx}, nil
}
