package infra

import (
	"sync"
	"time"

	"rendezvous-service/rendezvous/domain"

	"golang.org/x/time/rate"
)

// LimiterStore é uma implementação de infra baseada em token-bucket
// (x/time/rate) com cache por identificador e limpeza periódica.
//
// Diferente de um rate limit por cliente, aqui a chave é o identificador
// do rendezvous: protege o registry de flood de chegadas em uma mesma
// chave (ou em muitas chaves descartáveis).
type LimiterStore struct {
	mu           sync.Mutex
	entries      map[domain.Key]*limiterEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type LimiterOption func(*LimiterStore)

func WithIdleTTL(d time.Duration) LimiterOption {
	return func(s *LimiterStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) LimiterOption {
	return func(s *LimiterStore) { s.cleanupEvery = d }
}

func NewLimiterStore(rps float64, burst int, opts ...LimiterOption) *LimiterStore {
	s := &LimiterStore{
		entries:      make(map[domain.Key]*limiterEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LimiterStore) RPS() float64 { return float64(s.rps) }
func (s *LimiterStore) Burst() int   { return s.burst }

// Get implementa domain.LimiterStore.
func (s *LimiterStore) Get(key domain.Key) domain.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *LimiterStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa identificadores inativos
// periodicamente. Pare cancelando o contexto.
func (s *LimiterStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem
// importar context aqui. (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
