package notification

import (
	"fmt"

	"github.com/aws/smithy-go/logging"
	"github.com/rs/zerolog"
)

// smithyLogger routes AWS SDK log output into zerolog.
type smithyLogger struct {
	logger zerolog.Logger
}

func newSmithyLogger(logger zerolog.Logger) logging.Logger {
	return &smithyLogger{
		logger: logger.With().Str("component", "aws-sdk").Logger(),
	}
}

func (a *smithyLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	var event *zerolog.Event
	switch classification {
	case logging.Warn:
		event = a.logger.Warn()
	case logging.Debug:
		event = a.logger.Debug()
	default:
		event = a.logger.Info().Str("classification", string(classification))
	}
	event.Msg(fmt.Sprintf(format, v...))
}
