// Package config loads service configuration with Viper.
//
// Values come from a YAML file, an optional .env file and environment
// variables, in increasing order of precedence. Environment variables use the
// service prefix and underscore-separated paths:
//
//	ACCOUNTD_DATABASE_DSN=postgres://...
//	ACCOUNTD_JWT_SECRET=...
//
// # Usage
//
//	var cfg app.Config
//	err := config.LoadConfig("accountd", &cfg)
package config
