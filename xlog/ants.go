package xlog

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
)

var _ ants.Logger = (*AntsXLogger)(nil)

// AntsXLogger routes the ants pool diagnostics into an XLogger at debug
// level under the "Ants" component name.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	if logger == nil {
		return &AntsXLogger{logger: NewNopXLogger()}
	}
	return &AntsXLogger{
		logger: named(logger, "Ants"),
	}
}

// named derives a component logger sharing the parent's core and level.
func named(parent XLogger, component string) XLogger {
	p, ok := parent.(*xLogger)
	if !ok {
		return parent
	}
	return &xLogger{
		logger:    p.zap().Named(component),
		level:     p.level,
		ctxFields: p.ctxFields,
		writer:    p.writer,
		encoder:   p.encoder,
	}
}
