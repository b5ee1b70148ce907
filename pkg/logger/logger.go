// Package logx is the process-wide zerolog logger. Call Init once at startup;
// before that, events go to zerolog's default stderr logger.
package logx

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/njchilds90/mathcmd/internal/core"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	// Output overrides the sink. Nil means a console writer outside
	// production and stderr JSON in production.
	Output io.Writer
}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

func Init(opts ...LoggerOpts) {
	o := safe(opts...)
	if o.Environment.IsProduction() {
		if o.Output != nil {
			log.Logger = zerolog.New(o.Output).With().Timestamp().Logger()
		}
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		return
	}
	var out io.Writer = zerolog.NewConsoleWriter()
	if o.Output != nil {
		out = o.Output
	}
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
