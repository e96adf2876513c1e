package badgerdb

import (
	"strings"

	"github.com/celer-network/go-eosdeploy/log"
)

// extendedLog routes badger's printf style logging into the module logger.
type extendedLog struct {
	*log.Logger
}

func (l *extendedLog) Errorf(f string, v ...interface{}) {
	l.Error().Msgf(strings.TrimSpace(f), v...)
}

func (l *extendedLog) Warningf(f string, v ...interface{}) {
	l.Warn().Msgf(strings.TrimSpace(f), v...)
}

func (l *extendedLog) Infof(f string, v ...interface{}) {
	l.Info().Msgf(strings.TrimSpace(f), v...)
}

func (l *extendedLog) Debugf(f string, v ...interface{}) {
	l.Debug().Msgf(strings.TrimSpace(f), v...)
}
