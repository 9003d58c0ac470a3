// Command seed bootstraps the default accounts: one admin plus one
// authority per grievance category. Safe to run repeatedly; it exits
// without writes when an admin account already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/campusworks/grievance-api/internal/repository"
	"github.com/campusworks/grievance-api/internal/service"
	"github.com/campusworks/grievance-api/pkg/config"
	"github.com/campusworks/grievance-api/pkg/database"
	"github.com/campusworks/grievance-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := service.NewUserService(repository.NewUserRepository(db), nil, logr)
	if err := users.Seed(ctx, cfg.Seed.AdminPassword, cfg.Seed.AuthorityPassword); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	log.Println("database seeded with default users")
	log.Println("  admin     -> username: admin")
	log.Println("  authority -> username: academic_head / admin_officer / hostel_warden / exam_controller")
}
