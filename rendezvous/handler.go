package rendezvous

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"rendezvous-service/rendezvous/application"
	"rendezvous-service/rendezvous/domain"
)

// DefaultPathPrefix é a rota original do serviço.
const DefaultPathPrefix = "/wait-for-second-party/"

// Corpos literais do contrato: são parte da interface externa, não mude.
const (
	bodySynced  = "Synced"
	bodyTimeout = "Timeout"
)

type Options struct {
	Registry domain.Registry
	// Timeout da espera pela segunda parte; 0 usa o padrão (10s).
	Timeout time.Duration
	Stats   domain.StatsStore

	PathPrefix    string
	TimeoutStatus int
	BusyStatus    int
}

// Handler devolve o handler HTTP do rendezvous.
//
// POST <prefix><identifier> bloqueia até a segunda parte chegar no mesmo
// identificador ou o deadline estourar. Só dois desfechos fazem parte do
// contrato: 200 "Synced" e TimeoutStatus "Timeout".
func Handler(opts Options) http.Handler {
	if opts.PathPrefix == "" {
		opts.PathPrefix = DefaultPathPrefix
	}
	if opts.TimeoutStatus == 0 {
		opts.TimeoutStatus = http.StatusRequestTimeout
	}
	if opts.BusyStatus == 0 {
		opts.BusyStatus = http.StatusServiceUnavailable
	}

	svc := application.Service{
		Registry: opts.Registry,
		Timeout:  opts.Timeout,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if !strings.HasPrefix(r.URL.Path, opts.PathPrefix) {
			http.NotFound(w, r)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, opts.PathPrefix)
		if strings.Contains(id, "/") {
			// a rota aceita um único segmento, como no contrato original
			http.NotFound(w, r)
			return
		}
		if id == "" {
			http.Error(w, "missing identifier", http.StatusBadRequest)
			return
		}

		outcome, err := svc.Arrive(domain.Key(id))
		if err != nil {
			if errors.Is(err, domain.ErrRegistryFull) {
				http.Error(w, http.StatusText(opts.BusyStatus), opts.BusyStatus)
				return
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if opts.Stats != nil {
			// best-effort: erro de stats nunca derruba a resposta
			_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
				Key:     domain.Key(id),
				Outcome: outcome,
				At:      time.Now(),
			})
		}

		switch outcome {
		case domain.Matched:
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, bodySynced)
		case domain.TimedOut:
			w.WriteHeader(opts.TimeoutStatus)
			_, _ = io.WriteString(w, bodyTimeout)
		}
	})
}
