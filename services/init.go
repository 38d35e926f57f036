package services

import (
	"github.com/pkg/errors"

	"github.com/caseflowhq/mailroom/config"
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/logger"
	"github.com/caseflowhq/mailroom/internal/repository"
	"github.com/caseflowhq/mailroom/services/events"
	"github.com/caseflowhq/mailroom/services/ingestion"
	"github.com/caseflowhq/mailroom/services/mailbox"
	"github.com/caseflowhq/mailroom/services/storage"
)

type Services struct {
	MailboxClient    interfaces.MailboxClient
	StorageService   interfaces.StorageService
	Publisher        interfaces.EventPublisher
	Subscriber       interfaces.EventSubscriber
	IngestionService interfaces.IngestionService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	publisherConfig := &events.PublisherConfig{
		MessageTTL:          events.DefaultMessageTTL,
		MaxRetries:          events.DefaultMaxRetries,
		PublishTimeout:      events.DefaultPublishTimeout,
		ReconnectBackoff:    events.DefaultReconnectBackoff,
		MaxReconnectBackoff: events.DefaultMaxReconnectBackoff,
	}
	publisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, publisherConfig)
	if err != nil {
		return nil, err
	}

	subscriber, err := events.NewRabbitMQSubscriber(cfg.AppConfig.RabbitMQURL, log)
	if err != nil {
		return nil, err
	}

	storageService, err := initStorage(cfg.StorageConfig)
	if err != nil {
		return nil, err
	}

	mailboxClient := mailbox.NewIMAPMailboxClient(log)

	ingestionService := ingestion.NewIngestionService(ingestion.Deps{
		Logger:           log,
		MailboxClient:    mailboxClient,
		Storage:          storageService,
		Publisher:        publisher,
		AccountRepo:      repos.MailboxAccountRepository,
		EmailRepo:        repos.EmailRepository,
		ImportRepo:       repos.EmailImportRepository,
		MatterRepo:       repos.MatterRepository,
		DocumentRepo:     repos.DocumentRepository,
		TimelineRepo:     repos.TimelineEventRepository,
		NotificationRepo: repos.NotificationRepository,
	})

	return &Services{
		MailboxClient:    mailboxClient,
		StorageService:   storageService,
		Publisher:        publisher,
		Subscriber:       subscriber,
		IngestionService: ingestionService,
	}, nil
}

func initStorage(cfg *config.StorageConfig) (interfaces.StorageService, error) {
	switch cfg.Provider {
	case "s3":
		return storage.NewS3StorageService(cfg.AWSRegion, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.AttachmentBucket, cfg.CDNDomain), nil
	case "r2":
		return storage.NewR2StorageService(cfg.R2AccountID, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.AttachmentBucket, cfg.CDNDomain), nil
	default:
		return nil, errors.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
