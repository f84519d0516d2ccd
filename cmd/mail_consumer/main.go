package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/VannaSem/SevaSign/internal/auth"
	"github.com/VannaSem/SevaSign/internal/config"
	"github.com/VannaSem/SevaSign/internal/database"
	"github.com/VannaSem/SevaSign/internal/env"
	filestorage "github.com/VannaSem/SevaSign/internal/file_storage"
	"github.com/VannaSem/SevaSign/internal/mailer"
	"github.com/VannaSem/SevaSign/internal/queue"
	"github.com/VannaSem/SevaSign/internal/repository"
	"github.com/VannaSem/SevaSign/internal/util"
	"gorm.io/gorm"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const (
	MAX_WORKER = 3
)

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	var mail mailer.Client
	switch cfg.Mail.PROVIDER {
	case "gmail":
		mail = mailer.NewGmailMailer(cfg.Mail.GMAIL_USERNAME, cfg.Mail.GMAIL_APP_PASSWORD, logger)
	default:
		mail = mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	}

	jwtService := auth.NewJwt(cfg.Auth,
		logger)
	repo := repository.NewRepository(db, logger, jwtService, s3)
	app := queue.MailConsumerContext{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	ctx := context.Background()

	if err := rabbitMQ.ConsumeMailJob(ctx, mailJobHandler, MAX_WORKER, &app); err != nil {
		logger.Fatalf("Failed to consume mail job: %v", err)
	}

	logger.Infof("Started consuming mail job")

	// Block forever to keep the consumer running
	select {}
}

// verifyRecipient checks the job against the request row before sending,
// a stale or forged job must not leak request details to a third party.
func verifyRecipient(ctx context.Context, app *queue.MailConsumerContext, refCode, toEmail string) (bool, error) {
	request, err := app.Repository.Endorsement.GetByRefCode(ctx, nil, refCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("endorsement request not found: %s", refCode)
		}

		return true, fmt.Errorf("failed to get endorsement request: %w", err)
	}

	requester, err := app.Repository.User.GetById(ctx, nil, request.RequesterID)
	if err != nil {
		return true, fmt.Errorf("failed to get requester: %w", err)
	}

	if requester.Email != toEmail {
		signatories, err := app.Repository.User.GetSignatories(ctx, nil)
		if err != nil {
			return true, fmt.Errorf("failed to list signatories: %w", err)
		}

		known := false
		for _, s := range signatories {
			if s.Email == toEmail {
				known = true
				break
			}
		}
		if !known {
			return false, fmt.Errorf("email %s does not belong to request %s or any signatory", toEmail, refCode)
		}
	}

	return true, nil
}

func mailJobHandler(ctx context.Context, jobPayload queue.MailJobPayload, app *queue.MailConsumerContext) (bool, error) {
	var refCode string

	switch jobPayload.TemplateFile {
	case mailer.TemplateRequestSubmitted:
		var data mailer.RequestSubmittedData
		if err := json.Unmarshal(jobPayload.Data, &data); err != nil {
			return false, fmt.Errorf("failed to unmarshal RequestSubmittedData: %w", err)
		}
		refCode = data.RefCode
	case mailer.TemplateRequestAccepted, mailer.TemplateRequestRejected:
		var data mailer.RequestDecisionData
		if err := json.Unmarshal(jobPayload.Data, &data); err != nil {
			return false, fmt.Errorf("failed to unmarshal RequestDecisionData: %w", err)
		}
		refCode = data.RefCode
	case mailer.TemplateRequestSigned:
		var data mailer.RequestSignedData
		if err := json.Unmarshal(jobPayload.Data, &data); err != nil {
			return false, fmt.Errorf("failed to unmarshal RequestSignedData: %w", err)
		}
		refCode = data.RefCode
	default:
		return false, fmt.Errorf("unsupported template: %s", jobPayload.TemplateFile)
	}

	if shouldRequeue, err := verifyRecipient(ctx, app, refCode, jobPayload.ToEmail); err != nil {
		return shouldRequeue, err
	}

	var payload any
	if err := json.Unmarshal(jobPayload.Data, &payload); err != nil {
		return false, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	status, err := app.Mailer.Send(jobPayload.TemplateFile, jobPayload.ToEmail, payload)
	if err != nil {
		return true, fmt.Errorf("failed to send email: %w", err)
	}

	if status != http.StatusOK && status != http.StatusAccepted {
		return true, fmt.Errorf("email sending failed with status: %d", status)
	}

	return true, nil
}
