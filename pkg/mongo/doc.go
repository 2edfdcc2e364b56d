// Package mongo manages the MongoDB connection for the application stores.
//
// Configuration is environment-driven, Connect retries transient failures
// with a linearly growing delay, and Healthcheck plugs into the readiness
// probe:
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//	db, err := mongo.Database(ctx, cfg)
package mongo
