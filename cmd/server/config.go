package main

import (
	"github.com/dmitrymomot/cravecorner/core/cookie"
	"github.com/dmitrymomot/cravecorner/core/server"
	"github.com/dmitrymomot/cravecorner/integration/database/mongo"
	"github.com/dmitrymomot/cravecorner/integration/database/pg"
	"github.com/dmitrymomot/cravecorner/integration/database/redis"
	"github.com/dmitrymomot/cravecorner/integration/email/postmark"
	"github.com/dmitrymomot/cravecorner/integration/storage/s3"
	"github.com/dmitrymomot/cravecorner/internal/auth"
	"github.com/dmitrymomot/cravecorner/internal/credential"
	"github.com/dmitrymomot/cravecorner/internal/delivery"
	"github.com/dmitrymomot/cravecorner/internal/federated"
	"github.com/dmitrymomot/cravecorner/middleware"
)

// Store drivers selectable with STORE_DRIVER.
const (
	driverMemory   = "memory"
	driverMongo    = "mongo"
	driverPostgres = "postgres"
)

// Config is the process configuration, loaded from the environment and an
// optional .env file.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"cravecorner"`
	Env         string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`

	// NODE_ENV is honoured when APP_ENV is not set. EMAIL_DEV_DIR receives
	// messages when EMAIL_PROVIDER=dev.
	NodeEnv    string `env:"NODE_ENV"`
	DevMailDir string `env:"EMAIL_DEV_DIR" envDefault:"tmp/emails"`

	Server     server.Config
	Cookie     cookie.Config
	CORS       middleware.CORSConfig
	Credential credential.Config
	Auth       auth.Config
	Google     federated.Config
	Delivery   delivery.Config
	Postmark   postmark.Config
	Mongo      mongo.Config
	Postgres   pg.Config
	Redis      redis.Config
	S3         s3.Config
}
