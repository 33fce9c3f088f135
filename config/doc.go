// Package config loads the foldkit runtime configuration.
//
// It uses Viper to read a YAML file and godotenv to load a .env file, then
// overlays environment variables. Variables use the FOLDKIT_ prefix with
// underscore-separated paths (e.g., FOLDKIT_ENGINE_POOL_CONCURRENCY).
//
// # Usage
//
//	cfg, err := config.Load(config.WithConfigFile("foldkit.yml"))
//	if err != nil {
//	    return err
//	}
//	shutdown, err := fp.Init(ctx, *cfg)
//
// # File format
//
//	name: batch-worker
//	environment: production
//	logging:
//	  level: debug
//	  format: json
//	engine:
//	  pool_concurrency: 8
//	  flatten_concurrency: 20
//	  flatten_race_timeout: 1s
package config
