package s3

import "time"

// Config holds the image bucket settings.
type Config struct {
	Bucket         string        `env:"S3_BUCKET"`
	Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string        `env:"S3_SECRET_ACCESS_KEY"`
	Endpoint       string        `env:"S3_ENDPOINT"`  // MinIO, R2, Spaces
	BaseURL        string        `env:"S3_BASE_URL"`  // CDN in front of the bucket
	ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE"`
	Prefix         string        `env:"S3_KEY_PREFIX" envDefault:"profile-pictures"`
	UploadTimeout  time.Duration `env:"S3_UPLOAD_TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}
