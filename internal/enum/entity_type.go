package enum

type EntityType string

const (
	EMAIL           EntityType = "EMAIL"
	EMAIL_IMPORT    EntityType = "EMAIL_IMPORT"
	DOCUMENT        EntityType = "DOCUMENT"
	MAILBOX_ACCOUNT EntityType = "MAILBOX_ACCOUNT"
)

func (entityType EntityType) String() string {
	return string(entityType)
}
