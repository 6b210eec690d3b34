package infra

import (
	"sync"

	"rendezvous-service/rendezvous/domain"
)

// slot é a entrada pendente de uma chave: um sinal fire-once.
// O canal é alocado antes de o slot ser publicado no mapa, então o dono
// nunca perde um wakeup.
type slot struct {
	done chan struct{}
	once sync.Once
}

func newSlot() *slot { return &slot{done: make(chan struct{})} }

func (s *slot) Done() <-chan struct{} { return s.done }

// complete dispara o sinal. Disparos repetidos ou tardios (dono já
// abandonou o slot) são no-ops — sinal descartado não é erro.
func (s *slot) complete() { s.once.Do(func() { close(s.done) }) }

// Registry é a implementação em memória do domain.Registry.
//
// Invariante central: no máximo um slot por chave a cada instante.
// As duas seções críticas (MatchOrInsert e Remove) são O(1) e nunca
// suspendem segurando o mutex; a espera acontece inteiramente fora dele,
// então um waiter pendurado não bloqueia outras chegadas.
type Registry struct {
	mu         sync.Mutex
	slots      map[domain.Key]*slot
	maxPending int
}

type RegistryOption func(*Registry)

// WithMaxPending limita o número de esperas pendentes simultâneas.
// 0 (padrão) = sem limite. O match nunca é recusado: ele libera uma vaga.
func WithMaxPending(n int) RegistryOption {
	return func(r *Registry) { r.maxPending = n }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{slots: make(map[domain.Key]*slot)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MatchOrInsert implementa domain.Registry.
//
// O lookup e a decisão (casar ou inserir) formam uma única seção crítica:
// duas chegadas concorrentes na mesma chave nunca veem ambas "sem slot".
func (r *Registry) MatchOrInsert(key domain.Key) (domain.Waiter, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.slots[key]; ok {
		delete(r.slots, key)
		existing.complete()
		return nil, true, nil
	}

	if r.maxPending > 0 && len(r.slots) >= r.maxPending {
		return nil, false, domain.ErrRegistryFull
	}

	s := newSlot()
	r.slots[key] = s
	return s, false, nil
}

// Remove implementa domain.Registry: retira o slot da chave somente se
// ainda for o mesmo waiter. Um matcher pode ter removido (e completado)
// o slot na janela entre o deadline disparar e o waiter pegar o mutex.
func (r *Registry) Remove(key domain.Key, w domain.Waiter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.slots[key]
	if !ok || domain.Waiter(existing) != w {
		return false
	}
	delete(r.slots, key)
	return true
}

// Pending informa quantas esperas estão pendentes agora.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
