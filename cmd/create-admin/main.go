package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"bitva-auth/internal/config"
	"bitva-auth/internal/database"
	"bitva-auth/internal/logger"
	"bitva-auth/internal/models"

	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "email of an existing account")
	revoke := flag.Bool("revoke", false, "remove the admin flag instead of granting it")
	verify := flag.Bool("verify", false, "also mark the account as verified")
	envFile := flag.String("env-file", ".env", "optional dotenv file")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin -email <address> [-verify] [-revoke]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(logger.Config{Level: "warn", Encoding: "console"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.ConnectPostgres(ctx, cfg, database.RetryPolicy{MaxRetries: 3, Delay: time.Second}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	repo := database.NewPgUserRepository(pool, appLogger)
	user, err := repo.SetAdmin(ctx, strings.TrimSpace(*email), !*revoke, *verify)
	if errors.Is(err, models.ErrUserNotFound) {
		fmt.Fprintf(os.Stderr, "no account with email %s\n", *email)
		os.Exit(1)
	}
	if err != nil {
		appLogger.Fatal("Failed to update account", zap.Error(err))
	}

	fmt.Printf("%s: is_admin=%t is_verified=%t\n", user.Email, user.IsAdmin, user.IsVerified)
}
