package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/alumni"
	"github.com/haniSalm/FAST-E-Learning/internal/auth"
	"github.com/haniSalm/FAST-E-Learning/internal/config"
	"github.com/haniSalm/FAST-E-Learning/internal/db"
	"github.com/haniSalm/FAST-E-Learning/internal/logger"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/user"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env).With("component", "portaladmin")

	ctx := context.Background()
	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close(database)

	// one-shot commands export nothing
	m := metrics.NewMock()
	pattern, _ := regexp.Compile(cfg.Alumni.EmailPattern)
	validator := validation.New(validation.WithAlumniPattern(pattern))
	users := user.NewRepository(database, m)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenTTL)*time.Second)

	cli := &commandLine{
		db:      database,
		users:   users,
		authSvc: auth.NewService(auth.NewRepository(database, m), users, tokens, validator, cfg.Auth, m),
		alumni:  alumni.NewService(alumni.NewRepository(database, m), validator),
		out:     os.Stdout,
		logger:  log,
	}

	if err := cli.run(ctx, os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			log.Error("command failed", "error", err)
		}
		db.Close(database)
		os.Exit(1)
	}
}
