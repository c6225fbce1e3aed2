// Package mwlogger attaches a request-scoped logger to every request
package mwlogger

import (
	"context"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/helpers"
	"github.com/wb-go/wbf/zlog"
)

type requestLoggerKey struct{}

// NewMWLogger - обёртка для логирования запросов: каждому запросу присваивается
// UUID, логгер с ним пробрасывается в контекст. Id возвращается клиенту в
// заголовке ответа, чтобы сбой аплоада/очистки можно было сопоставить с логами.
func NewMWLogger(next *ginext.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = helpers.CreateUUID()
		}
		w.Header().Set("X-Request-Id", reqID)

		// почти весь контракт живет в query-параметрах (userid, assetid,
		// label), поэтому логируем и их
		logger := zlog.Logger.With().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Logger()

		ctx := context.WithValue(r.Context(), requestLoggerKey{}, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggerFromContext extracts the request logger; sagas and query handlers
// log compensation and retry failures through it.
func LoggerFromContext(ctx context.Context) zlog.Zerolog {
	if l, ok := ctx.Value(requestLoggerKey{}).(zlog.Zerolog); ok {
		return l
	}
	return zlog.Logger
}
