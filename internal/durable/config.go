package durable

import "bizstate/internal/durable/core"

// Config selects and parameterizes a backend. Field tags are read by internal/config
// with the BIZSTATE_ prefix, so Driver is BIZSTATE_STORAGE_DRIVER.
type Config struct {
	Driver    core.Driver `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	KeyPrefix string      `env:"KEY_PREFIX"`

	FSRoot      string `env:"FS_ROOT"`
	SQLitePath  string `env:"SQLITE_PATH"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB"`
	RedisNamespace string `env:"REDIS_NAMESPACE"`

	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`
	S3Prefix    string `env:"S3_PREFIX"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3PathStyle bool   `env:"S3_PATH_STYLE"`

	GCSBucket   string `env:"GCS_BUCKET"`
	GCSPrefix   string `env:"GCS_PREFIX"`
	GCSEndpoint string `env:"GCS_ENDPOINT"`

	MongoURI        string `env:"MONGO_URI"`
	MongoDatabase   string `env:"MONGO_DATABASE"`
	MongoCollection string `env:"MONGO_COLLECTION"`
}
