package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env        Env
	Minio      MinioConfig
	Upload     UploadConfig
	Reassembly ReassemblyConfig
	Recovery   RecoveryConfig
	NATS       NATSConfig
	Database   DatabaseConfig
	Server     ServerConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type MinioConfig struct {
	Endpoint                  string        `envconfig:"MINIO_ENDPOINT" required:"true"`
	BucketName                string        `envconfig:"MINIO_BUCKET_NAME" required:"true"`
	AccessKey                 string        `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey                 string        `envconfig:"MINIO_SECRET_KEY" required:"true"`
	DownloadSignedURLDuration time.Duration `envconfig:"MINIO_DOWNLOAD_SIGNED_URL_DURATION" default:"336h"`
	UseSSL                    bool          `envconfig:"MINIO_USE_SSL" default:"false"`
}

type UploadConfig struct {
	ChunkSize       int64         `envconfig:"UPLOAD_CHUNK_SIZE" default:"4194304"` // 4MiB
	Parallelism     int           `envconfig:"UPLOAD_PARALLELISM" default:"4"`
	MaxRetries      uint64        `envconfig:"UPLOAD_MAX_RETRIES" default:"3"`
	InitialInterval time.Duration `envconfig:"UPLOAD_RETRY_INITIAL_INTERVAL" default:"500ms"`
}

type ReassemblyConfig struct {
	FetchTimeout time.Duration `envconfig:"REASSEMBLY_FETCH_TIMEOUT" default:"30s"`
	SweepEvery   time.Duration `envconfig:"REASSEMBLY_SWEEP_EVERY" default:"2m"`
	SweepSettle  time.Duration `envconfig:"REASSEMBLY_SWEEP_SETTLE" default:"2m"`
}

type RecoveryConfig struct {
	// AltEndpoints are alternate region endpoints tried when the original
	// host fails, e.g. "s3.eu-west-2.amazonaws.com".
	AltEndpoints   []string      `envconfig:"RECOVERY_ALT_ENDPOINTS"`
	ProbeTimeout   time.Duration `envconfig:"RECOVERY_PROBE_TIMEOUT" default:"5s"`
	PartProbeLimit int           `envconfig:"RECOVERY_PART_PROBE_LIMIT" default:"3"`
}

type NATSConfig struct {
	URL          string `envconfig:"NATS_URL" required:"true"`
	StreamName   string `envconfig:"NATS_STREAM_NAME" required:"true"`
	ConsumerName string `envconfig:"NATS_CONSUMER_NAME" required:"true"`
	Subject      string `envconfig:"NATS_SUBJECT" required:"true"`
	DeliverGroup string `envconfig:"NATS_DELIVER_GROUP" required:"true"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"25"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CON_MAX_LIFETIME" default:"5m"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
