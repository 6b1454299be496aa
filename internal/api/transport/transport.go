// transport — цепочка http.RoundTripper для исходящих запросов к API.
//
// Порядок в Chain: metadata -> timeout -> logging -> base.
// Каждое звено оборачивает следующее, как клиентские интерсепторы.
package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/account-client/internal/pkg/log"
	"github.com/pribylovaa/account-client/internal/pkg/redact"
)

const HeaderRequestID = "X-Request-Id"

// Middleware оборачивает RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain применяет звенья к base в порядке перечисления (первое — внешнее).
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}

	return base
}

// WithMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если не задан — генерируется uuid);
//   - User-Agent (если передан параметром).
//
// Запрос клонируется: исходный *http.Request не меняется.
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())

			if r.Header.Get(HeaderRequestID) == "" {
				r.Header.Set(HeaderRequestID, uuid.NewString())
			}
			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}

// WithTimeout навешивает таймаут d на запрос, если у контекста ещё нет дедлайна.
//
// Контракт:
//  1. d <= 0 — запрос уходит как есть;
//  2. у ctx уже есть deadline — оставляет как есть;
//  3. иначе — context.WithTimeout; cancel вызывается при закрытии тела ответа
//     (или сразу, если запрос завершился ошибкой).
func WithTimeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if d <= 0 {
				return next.RoundTrip(r)
			}
			if _, ok := r.Context().Deadline(); ok {
				return next.RoundTrip(r)
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			resp, err := next.RoundTrip(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

// WithLogging пишет одну запись уровня Info на запрос: msg="http", method, path, status, dur.
// Логгер берётся из контекста запроса (pkg/log), иначе base.
//
// Безопасность: тело и заголовки не логируются, секретные query-параметры маскируются.
func WithLogging(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			l, ok := log.Lookup(r.Context())
			if !ok {
				l = base
			}
			l = l.With(slog.String("request_id", r.Header.Get(HeaderRequestID)))

			resp, err := next.RoundTrip(r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", redact.URL(r.URL)),
				slog.Duration("dur", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("err", err.Error()))
				l.LogAttrs(r.Context(), slog.LevelWarn, "http", attrs...)
				return nil, err
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))
			l.LogAttrs(r.Context(), slog.LevelInfo, "http", attrs...)

			return resp, nil
		})
	}
}

// cancelBody отменяет контекст таймаута при закрытии тела ответа.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
