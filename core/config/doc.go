// Package config loads env-tagged structs with caarlos0/env. A .env file
// in the working directory is read once per process, and each struct type
// is parsed once and cached.
//
//	var cfg struct {
//		Redis redis.Config
//		Port  string `env:"PORT"`
//	}
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Defaults come from envDefault tags because parsing starts from the zero
// value. Tests that change the environment call Reset.
package config
