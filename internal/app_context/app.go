package appcontext

import (
	"github.com/VannaSem/SevaSign/internal/auth"
	"github.com/VannaSem/SevaSign/internal/config"
	"github.com/VannaSem/SevaSign/internal/mailer"
	"github.com/VannaSem/SevaSign/internal/queue"
	"github.com/VannaSem/SevaSign/internal/repository"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	// Logger lol....
	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	// JWTService manages JWT operations for authentication such as generate, verify, refresh token.
	JWTService auth.JWTInterface

	// Queue publishes background jobs such as notification mails.
	Queue *queue.RabbitMQ

	S3 *minio.Client
}
