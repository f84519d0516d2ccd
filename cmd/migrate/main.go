package main

import (
	"github.com/VannaSem/SevaSign/internal/config"
	"github.com/VannaSem/SevaSign/internal/database"
	"github.com/VannaSem/SevaSign/internal/env"
	"github.com/VannaSem/SevaSign/internal/model"
	"go.uber.org/zap"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()
	cfg := config.GetConfig()

	logger.Infof("Database configuration: %+v", cfg.DB)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	db.Exec(`CREATE EXTENSION IF NOT EXISTS citext`)

	migrateErr := db.AutoMigrate(
		&model.User{},
		&model.Token{},
		&model.OAuthProvider{},
		&model.File{},
		&model.EndorsementRequest{},
		&model.AuditLog{},
	)
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}
}
