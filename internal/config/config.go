package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Worker           WorkerConfig            `env:",prefix=WORKER_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
}

type WorkerConfig struct {
	Name      string   `env:"NAME,default=consumer"`
	Receivers []string `env:"RECEIVERS,default=default"`
	// FailureLimit is the maximumFailures of the failure limit listener. 0 disables it.
	FailureLimit int           `env:"FAILURE_LIMIT,default=0"`
	MessageLimit int           `env:"MESSAGE_LIMIT,default=0"`
	TimeLimit    time.Duration `env:"TIME_LIMIT,default=0s"`
	Sleep        time.Duration `env:"SLEEP,default=1s"`
	RateLimit    struct {
		RPS   float64 `env:"RPS,default=0"`
		Burst int     `env:"BURST,default=1"`
	} `env:",prefix=RATE_LIMIT_"`
	RedeliverTimeout time.Duration `env:"REDELIVER_TIMEOUT,default=1h"`
	JanitorSchedule  string        `env:"JANITOR_SCHEDULE,default=@every 5m"`
}

// QueueNames returns the configured receivers, trimmed and without duplicates.
func (c WorkerConfig) QueueNames() []string {
	names := lo.FilterMap(c.Receivers, func(name string, _ int) (string, bool) {
		name = strings.TrimSpace(name)
		return name, name != ""
	})
	return lo.Uniq(names)
}

func (c WorkerConfig) Validate() error {
	if len(c.QueueNames()) == 0 {
		return fmt.Errorf("WORKER_RECEIVERS: at least one receiver is required")
	}
	if c.FailureLimit < 0 {
		return fmt.Errorf("WORKER_FAILURE_LIMIT: must not be negative, got %d", c.FailureLimit)
	}
	if c.MessageLimit < 0 {
		return fmt.Errorf("WORKER_MESSAGE_LIMIT: must not be negative, got %d", c.MessageLimit)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("WORKER_TIME_LIMIT: must not be negative, got %s", c.TimeLimit)
	}
	return nil
}

type TelegramConfig struct {
	// BotToken is optional; without it no stop notifications are sent.
	BotToken string  `env:"BOT_TOKEN"`
	AdminIDs []int64 `env:"ADMIN_IDS"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string `env:"PATH,default=./data/msgworker.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=1"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=1"`
	MaxLifetime  string `env:"MAX_LIFETIME,default=5m"`
}
