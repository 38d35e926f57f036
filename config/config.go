package config

import (
	"github.com/caseflowhq/mailroom/internal/logger"
	"github.com/caseflowhq/mailroom/internal/tracing"
)

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"11000"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	Logger      *logger.Config
	Tracing     *tracing.JaegerConfig
}

type DatabaseConfig struct {
	Host            string `env:"MAILROOM_POSTGRES_HOST,required"`
	Port            string `env:"MAILROOM_POSTGRES_PORT,required"`
	User            string `env:"MAILROOM_POSTGRES_USER,required"`
	DBName          string `env:"MAILROOM_POSTGRES_DB_NAME,required"`
	Password        string `env:"MAILROOM_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"MAILROOM_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"MAILROOM_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"MAILROOM_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"MAILROOM_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"MAILROOM_POSTGRES_SSL_MODE" envDefault:"require"`
}

type StorageConfig struct {
	// Provider selects the object store backend, "s3" or "r2"
	Provider         string `env:"STORAGE_PROVIDER" envDefault:"r2"`
	AWSRegion        string `env:"AWS_REGION"`
	R2AccountID      string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID      string `env:"STORAGE_ACCESS_KEY_ID"`
	AccessKeySecret  string `env:"STORAGE_ACCESS_KEY_SECRET"`
	AttachmentBucket string `env:"BUCKET_NAME_EMAIL_ATTACHMENT" envDefault:"attachments"`
	CDNDomain        string `env:"STORAGE_CDN_DOMAIN"`
}
