// Package example implements example middleware in an outside package.
package example

import (
	"context"
	"strings"

	"github.com/advdv/broute"
	"go.uber.org/zap"
)

const (
	loggerKey   = "example.logger"
	languageKey = "example.language"
)

// Logger provides an example for request middleware that stores a request-scoped logger on the
// request's custom settings.
func Logger(logs *zap.Logger) broute.RequestMiddleware {
	return func(_ context.Context, req *broute.Request) error {
		req.CustomSettings[loggerKey] = logs.With(
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path))

		return nil
	}
}

// Log returns the logger stored by [Logger], or a no-op logger.
func Log(req *broute.Request) *zap.Logger {
	if logs, ok := req.CustomSettings[loggerKey].(*zap.Logger); ok {
		return logs
	}

	return zap.NewNop()
}

// RequestedLanguage stores the preferred language: the "lang" query parameter when present, the
// first Accept-Language entry otherwise, and fallback as the last resort.
func RequestedLanguage(fallback string) broute.RequestMiddleware {
	return func(_ context.Context, req *broute.Request) error {
		lang := req.URL.QueryValue("lang")
		if lang == "" && len(req.AcceptedLanguages) > 0 {
			lang = req.AcceptedLanguages[0].Value
		}

		if lang == "" {
			lang = fallback
		}

		req.CustomSettings[languageKey] = strings.ToLower(lang)

		return nil
	}
}

// Language returns the language stored by [RequestedLanguage].
func Language(req *broute.Request) string {
	lang, _ := req.CustomSettings[languageKey].(string)
	return lang
}
