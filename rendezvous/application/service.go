package application

import (
	"errors"
	"time"

	"rendezvous-service/rendezvous/domain"

	"github.com/benbjohnson/clock"
)

// DefaultTimeout é o deadline padrão de espera pela segunda parte.
const DefaultTimeout = 10 * time.Second

// ErrNoRegistry indica erro de wiring: o Service foi montado sem registry.
var ErrNoRegistry = errors.New("rendezvous: service requires a registry")

// Service concentra a regra de aplicação do rendezvous.
//
// Ele não sabe nada sobre HTTP (paths/status), apenas decide e espera.
// O Clock é injetável para permitir testar o deadline com relógio fake;
// nil usa o relógio real.
type Service struct {
	Registry domain.Registry
	Timeout  time.Duration
	Clock    clock.Clock
}

// Arrive registra a chegada de uma parte no identificador `key`.
//
//   - Se já havia alguém esperando, retorna Matched imediatamente: a
//     segunda parte nunca suspende, mesmo chegando uma fração depois.
//     A assimetria é proposital e não deve ser "corrigida" para uma
//     barreira simétrica.
//   - Senão, suspende (fora de qualquer exclusão) até o sinal do slot
//     disparar ou o deadline estourar, o que vier primeiro.
//
// TimedOut é um desfecho normal; o único erro esperado em operação
// correta é ErrRegistryFull vindo do registry.
func (s Service) Arrive(key domain.Key) (domain.Outcome, error) {
	if s.Registry == nil {
		return domain.OutcomeUnknown, ErrNoRegistry
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	clk := s.Clock
	if clk == nil {
		clk = clock.New()
	}

	w, matched, err := s.Registry.MatchOrInsert(key)
	if err != nil {
		return domain.OutcomeUnknown, err
	}
	if matched {
		return domain.Matched, nil
	}

	// Primeira parte: espera o sinal ou o deadline. O timer é parado no
	// retorno para não vazar quando o sinal chega cedo.
	t := clk.Timer(timeout)
	defer t.Stop()

	select {
	case <-w.Done():
		return domain.Matched, nil
	case <-t.C:
	}

	// O deadline estourou. Se um matcher levou o slot na janela da
	// corrida, Remove falha e o sinal dele já disparou: o sinal
	// observado vence o deadline.
	if !s.Registry.Remove(key, w) {
		<-w.Done()
		return domain.Matched, nil
	}
	return domain.TimedOut, nil
}
