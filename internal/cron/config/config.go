package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Mailbox polling fan-out, every 5 minutes
	CronSchedulePollMailboxes string `env:"CRON_SCHEDULE_POLL_MAILBOXES" envDefault:"0 */5 * * * *"`
}
