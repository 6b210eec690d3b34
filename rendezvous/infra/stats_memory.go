package infra

import (
	"context"
	"sync"

	"rendezvous-service/rendezvous/domain"
)

type Counters struct {
	Matched  int64
	TimedOut int64
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu    sync.Mutex
	total Counters
	byKey map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byKey: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	key := string(ev.Key)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Outcome {
	case domain.Matched:
		s.total.Matched++
		if s.trackKeys {
			c := s.byKey[key]
			c.Matched++
			s.byKey[key] = c
		}
	case domain.TimedOut:
		s.total.TimedOut++
		if s.trackKeys {
			c := s.byKey[key]
			c.TimedOut++
			s.byKey[key] = c
		}
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
