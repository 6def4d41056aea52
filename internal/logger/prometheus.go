package logger

import (
	"github.com/devhunt/devhunt-agent/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const errorTypeUnknown = "unknown"

// knownErrorTypes bounds the label values of metrics.ErrorsCounter.
var knownErrorTypes = map[string]bool{
	ErrorTypeApi:       true,
	ErrorTypeAuth:      true,
	ErrorTypeStore:     true,
	ErrorTypeWebsocket: true,
	ErrorTypeTgApi:     true,
}

// errorsHook counts error entries by their error_type field.
type errorsHook struct{}

func errorTypeOf(entry *log.Entry) string {
	errorType, ok := entry.Data[ErrorTypeField].(string)
	if !ok || !knownErrorTypes[errorType] {
		return errorTypeUnknown
	}
	return errorType
}

func (h *errorsHook) Fire(entry *log.Entry) error {
	metrics.ErrorsCounter.WithLabelValues(errorTypeOf(entry)).Inc()
	return nil
}

func (h *errorsHook) Levels() []log.Level {
	return []log.Level{log.ErrorLevel, log.FatalLevel, log.PanicLevel}
}

func addErrorsHook() {
	log.AddHook(&errorsHook{})
}
