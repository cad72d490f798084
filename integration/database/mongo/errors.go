package mongo

import "errors"

var (
	ErrEmptyConnectionURL     = errors.New("empty mongodb connection url, set MONGO_URI")
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongodb")
	ErrHealthcheckFailed      = errors.New("mongodb healthcheck failed")
)
