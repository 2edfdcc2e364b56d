// Package logger builds context-aware slog loggers.
//
// New assembles a *slog.Logger from functional options: output format and
// level, static attributes, and ContextExtractor callbacks that copy values
// such as the request ID out of the context into every record. Attribute
// constructors in attr.go keep key naming consistent across the codebase:
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Production, "emailify-api"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "template generated",
//	    logger.ConversationID(convID),
//	    logger.Attempt(2),
//	)
package logger
