// Package config loads widget engine configuration.
//
// Files and environment variables are merged by Viper: a config.yml found
// in the standard locations (or given explicitly) is read first, then
// environment variables and an optional .env file (godotenv) override it.
// UPPER_SNAKE variables map onto nested keys, so ENGINE_CLOSE_DELAY sets
// engine.close_delay.
//
//	var cfg config.ServiceConfig
//	if err := config.Load("widgetd", &cfg); err != nil {
//	    log.Fatal(err)
//	}
package config
