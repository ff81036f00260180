package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"auth-service/internal/config"
	"auth-service/internal/email"
	"auth-service/internal/infrastructure/database/postgres"
	"auth-service/internal/infrastructure/messaging"
	"auth-service/internal/logger"
	"auth-service/internal/routes"
	"auth-service/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT secret is missing. Please set JWT_SECRET environment variable.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// The broker connection is lazy: nothing is dialed until the first
	// publish, and a failed publish retries on the next one.
	mqttClient := mqtt.NewClient(&mqtt.Config{
		BrokerURL:            cfg.Broker.URL,
		ClientID:             cfg.Broker.ClientID,
		Username:             cfg.Broker.Username,
		Password:             cfg.Broker.Password,
		CleanSession:         true,
		KeepAlive:            30,
		ConnectTimeout:       cfg.Broker.ConnectTimeout,
		PublishTimeout:       cfg.Broker.PublishTimeout,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
	})
	publisher := messaging.NewEventPublisher(mqttClient)
	defer publisher.Close()

	var mailer *email.Sender
	if cfg.SMTP.Host != "" {
		mailer, err = email.NewSender(&cfg.SMTP)
		if err != nil {
			logger.Fatal("Failed to initialize email sender", zap.Error(err))
		}
	} else {
		logger.Warn("SMTP is not configured; confirmation emails are disabled")
	}

	userRepository := postgres.NewUserRepository(db)

	router := routes.SetupRoutes(cfg, routes.Dependencies{
		DB:        db,
		Users:     userRepository,
		Publisher: publisher,
		Mailer:    mailer,
	})

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}
