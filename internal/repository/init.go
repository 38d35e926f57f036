package repository

import (
	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/models"
)

type Repositories struct {
	MailboxAccountRepository interfaces.MailboxAccountRepository
	EmailRepository          interfaces.EmailRepository
	EmailImportRepository    interfaces.EmailImportRepository
	MatterRepository         interfaces.MatterRepository
	DocumentRepository       interfaces.DocumentRepository
	TimelineEventRepository  interfaces.TimelineEventRepository
	NotificationRepository   interfaces.NotificationRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		MailboxAccountRepository: NewMailboxAccountRepository(db),
		EmailRepository:          NewEmailRepository(db),
		EmailImportRepository:    NewEmailImportRepository(db),
		MatterRepository:         NewMatterRepository(db),
		DocumentRepository:       NewDocumentRepository(db),
		TimelineEventRepository:  NewTimelineEventRepository(db),
		NotificationRepository:   NewNotificationRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MailboxAccount{},
		&models.Email{},
		&models.EmailImport{},
		&models.Matter{},
		&models.MatterContact{},
		&models.Document{},
		&models.TimelineEvent{},
		&models.Notification{},
	)
}
