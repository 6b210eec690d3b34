package rendezvous

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rendezvous-service/rendezvous/domain"
)

type KeyFunc func(r *http.Request) domain.Key

// IdentifierKeyFunc extrai o identificador de rendezvous do path.
// Retorna "" para paths que não são a rota de rendezvous (o middleware
// deixa esses passarem sem limitar).
func IdentifierKeyFunc(prefix string) KeyFunc {
	return func(r *http.Request) domain.Key {
		if !strings.HasPrefix(r.URL.Path, prefix) {
			return ""
		}
		id := strings.TrimPrefix(r.URL.Path, prefix)
		if id == "" || strings.Contains(id, "/") {
			return ""
		}
		return domain.Key(id)
	}
}

type RateLimitOptions struct {
	Store               domain.LimiterStore
	KeyFn               KeyFunc
	PathPrefix          string
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// RateLimitMiddleware limita chegadas POR IDENTIFICADOR (não por
// cliente): protege o registry de flood de esperas em uma mesma chave.
func RateLimitMiddleware(opts RateLimitOptions) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.PathPrefix == "" {
		opts.PathPrefix = DefaultPathPrefix
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = IdentifierKeyFunc(opts.PathPrefix)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", string(key))
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-RateLimit-Burst", formatInt(ri.Burst()))
				}
			}

			lim := opts.Store.Get(key)
			if lim != nil && !lim.Allow() {
				w.Header().Set("Retry-After", formatInt(int(opts.RetryAfter.Seconds())))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// formatação sem depender de fmt, e sem notação científica para valores
// comuns em headers.
func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
