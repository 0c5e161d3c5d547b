package main

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "runtime"
    "syscall"
    "time"

    _ "github.com/go-sql-driver/mysql"
    "github.com/gorilla/mux"

    "supermarket-pos-api/config"
    "supermarket-pos-api/database"
    "supermarket-pos-api/handlers"
    "supermarket-pos-api/middleware"
    "supermarket-pos-api/queue"
    "supermarket-pos-api/services/auth"
    "supermarket-pos-api/services/email"
    "supermarket-pos-api/services/mpesa"
    "supermarket-pos-api/worker"
)

func corsMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
        w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")

        if r.Method == "OPTIONS" {
            w.WriteHeader(http.StatusOK)
            return
        }
        next.ServeHTTP(w, r)
    })
}

type responseWriter struct {
    http.ResponseWriter
    status int
}

func (rw *responseWriter) WriteHeader(code int) {
    rw.status = code
    rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()

        wrapper := &responseWriter{ResponseWriter: w, status: http.StatusOK}
        next.ServeHTTP(wrapper, r)

        // Only log slow requests and errors to keep the register chatter down.
        elapsed := time.Since(start)
        if elapsed > 500*time.Millisecond || wrapper.status >= 400 {
            log.Printf(
                "%s %s %s %d %v",
                r.Method,
                r.RequestURI,
                r.RemoteAddr,
                wrapper.status,
                elapsed,
            )
        }
    })
}

func main() {
    log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds | log.LUTC)

    numCPU := runtime.NumCPU()
    runtime.GOMAXPROCS(numCPU)
    log.Printf("Server starting with %d CPUs available", numCPU)

    cfg := config.Load()

    // Connect to the database with retry; MySQL may still be coming up.
    var db *database.Connection
    var err error
    for retries := 0; retries < 5; retries++ {
        db, err = database.NewConnection(cfg.Database)
        if err == nil {
            break
        }
        retryDelay := time.Duration(retries+1) * time.Second
        log.Printf("Failed to connect to database (attempt %d/5): %v. Retrying in %v...",
            retries+1, err, retryDelay)
        time.Sleep(retryDelay)
    }
    if err != nil {
        log.Fatalf("Failed to connect to database after retries: %v", err)
    }
    defer db.Close()

    ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
    defer cancel()
    if err := db.GetDB().PingContext(ctx); err != nil {
        log.Fatalf("Failed to ping database: %v", err)
    }
    log.Println("Successfully connected to database")

    jobQueue, err := queue.NewQueue(cfg.Redis.URL, "pos_jobs")
    if err != nil {
        log.Fatalf("Failed to connect to Redis: %v", err)
    }
    defer jobQueue.Close()
    log.Println("Successfully connected to Redis")

    mpesaService := mpesa.NewService(cfg.Mpesa)
    emailService := email.NewSMTPService(cfg.SMTP)
    jwtService := auth.NewJWTService(cfg.Session.Secret, "supermarket-pos-api", db)

    workerConcurrency := cfg.Redis.WorkerConcurrency
    if workerConcurrency < 2 {
        workerConcurrency = 2
    } else if workerConcurrency > 8 {
        workerConcurrency = 8
    }

    posWorker := worker.NewWorker(jobQueue, db, mpesaService, emailService, cfg.AlertEmail)
    posWorker.Start(workerConcurrency)
    defer posWorker.Stop()
    log.Printf("Started POS worker with %d threads", workerConcurrency)

    authHandler := handlers.NewAuthHandler(jwtService)
    inventoryHandler := handlers.NewInventoryHandler(db)
    checkoutHandler := handlers.NewCheckoutHandler(db, jobQueue)
    reportsHandler := handlers.NewReportsHandler(db)
    mpesaHandler := handlers.NewMpesaHandler(db, mpesaService, jobQueue, cfg)

    rateLimiter := middleware.NewRateLimiter(jobQueue.Client())

    router := mux.NewRouter()
    router.Use(corsMiddleware)
    router.Use(loggingMiddleware)
    router.Use(middleware.SecurityHeadersMiddleware)
    router.Use(rateLimiter.RateLimitMiddleware())

    api := router.PathPrefix("/api").Subrouter()

    // Auth
    api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

    // M-PESA payment endpoints; the callback must stay open for the gateway.
    api.HandleFunc("/mpesa/initiate", mpesaHandler.InitiatePayment).Methods("POST", "OPTIONS")
    api.HandleFunc("/mpesa/verify/{checkout_request_id}", mpesaHandler.VerifyPayment).Methods("GET", "OPTIONS")
    api.HandleFunc("/mpesa/callback", mpesaHandler.HandleCallback).Methods("POST")

    // Catalog reads are open to the register UI.
    api.HandleFunc("/inventory/products", inventoryHandler.GetProducts).Methods("GET", "OPTIONS")
    api.HandleFunc("/inventory/products/{id:[0-9]+}", inventoryHandler.GetProduct).Methods("GET", "OPTIONS")
    api.HandleFunc("/inventory/categories", inventoryHandler.GetCategories).Methods("GET", "OPTIONS")

    // Checkout
    api.HandleFunc("/checkout/search", checkoutHandler.SearchProducts).Methods("GET", "OPTIONS")
    api.HandleFunc("/checkout/sale", checkoutHandler.CreateSale).Methods("POST", "OPTIONS")
    api.HandleFunc("/checkout/transactions", checkoutHandler.GetTransactions).Methods("GET", "OPTIONS")
    api.HandleFunc("/checkout/transactions/{id:[0-9]+}", checkoutHandler.GetTransaction).Methods("GET", "OPTIONS")

    // Authenticated surface: inventory mutations, movements and reports.
    protected := api.PathPrefix("").Subrouter()
    protected.Use(middleware.AuthMiddleware(jwtService))
    protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")
    protected.HandleFunc("/inventory/products", inventoryHandler.CreateProduct).Methods("POST", "OPTIONS")
    protected.HandleFunc("/inventory/products/{id:[0-9]+}", inventoryHandler.UpdateProduct).Methods("PUT", "OPTIONS")
    protected.HandleFunc("/inventory/stock-movements", inventoryHandler.AdjustStock).Methods("POST", "OPTIONS")
    protected.HandleFunc("/inventory/stock-movements", inventoryHandler.GetStockMovements).Methods("GET", "OPTIONS")
    protected.HandleFunc("/reports/sales/summary", reportsHandler.SalesSummary).Methods("GET", "OPTIONS")
    protected.HandleFunc("/reports/sales/by-category", reportsHandler.SalesByCategory).Methods("GET", "OPTIONS")
    protected.HandleFunc("/reports/sales/top-products", reportsHandler.TopProducts).Methods("GET", "OPTIONS")
    protected.HandleFunc("/reports/inventory/status", reportsHandler.InventoryStatus).Methods("GET", "OPTIONS")

    // Deleting products is for supervisors only.
    admin := api.PathPrefix("").Subrouter()
    admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireAdmin())
    admin.HandleFunc("/inventory/products/{id:[0-9]+}", inventoryHandler.DeleteProduct).Methods("DELETE", "OPTIONS")

    startTime := time.Now()

    api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
        ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
        defer cancel()

        health := struct {
            Status     string `json:"status"`
            Time       string `json:"time"`
            Database   string `json:"database"`
            Redis      string `json:"redis"`
            Simulation bool   `json:"mpesa_simulation"`
            Uptime     string `json:"uptime"`
            GoVersion  string `json:"go_version"`
        }{
            Status:     "ok",
            Time:       time.Now().Format(time.RFC3339),
            Database:   "connected",
            Redis:      "connected",
            Simulation: mpesaService.Simulated(),
            Uptime:     fmt.Sprintf("%v", time.Since(startTime)),
            GoVersion:  runtime.Version(),
        }

        dbCtx, dbCancel := context.WithTimeout(ctx, 500*time.Millisecond)
        defer dbCancel()
        if err := db.GetDB().PingContext(dbCtx); err != nil {
            health.Status = "degraded"
            health.Database = "error"
        }

        redisCtx, redisCancel := context.WithTimeout(ctx, 500*time.Millisecond)
        defer redisCancel()
        if err := jobQueue.Client().Ping(redisCtx).Err(); err != nil {
            health.Status = "degraded"
            health.Redis = "error"
        }

        w.Header().Set("Content-Type", "application/json")
        json.NewEncoder(w).Encode(health)
    }).Methods("GET")

    srv := &http.Server{
        Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
        Handler:        router,
        ReadTimeout:    15 * time.Second,
        WriteTimeout:   30 * time.Second,
        IdleTimeout:    120 * time.Second,
        MaxHeaderBytes: 1 << 20,
    }

    go func() {
        log.Printf("Server starting on port %s", cfg.Server.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("Server error: %v", err)
        }
    }()

    stop := make(chan os.Signal, 1)
    signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

    <-stop
    log.Println("Shutdown signal received, gracefully shutting down...")

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer shutdownCancel()

    log.Println("Shutting down HTTP server...")
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Printf("Server forced to shutdown: %v", err)
    }

    log.Println("Stopping POS worker...")
    posWorker.Stop()

    // Give in-flight jobs a moment to land.
    time.Sleep(2 * time.Second)

    log.Println("Closing database connections...")
    db.Close()

    log.Println("Closing Redis connections...")
    jobQueue.Close()

    log.Println("Server exited properly")
}
