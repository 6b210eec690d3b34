package domain

// Camada de domínio do rendezvous.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "errors"

// Key identifica uma instância independente de rendezvous.
// Igualdade é comparação exata de string; não há normalização.
type Key string

// Outcome é o resultado terminal de uma chegada.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	// Matched: a segunda parte chegou antes do deadline.
	Matched
	// TimedOut: ninguém chegou dentro do deadline. É um resultado
	// normal, não uma falha; o chamador pode chegar de novo e iniciar
	// uma espera totalmente independente.
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "Matched"
	case TimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Waiter é a visão que a primeira parte tem do seu slot pendente.
//
// Done fecha exatamente uma vez, quando uma segunda parte completa o
// slot. Completar um slot que o dono já abandonou é um no-op seguro
// (sinal descartado), nunca um erro.
type Waiter interface {
	Done() <-chan struct{}
}

// Registry guarda no máximo um slot pendente por chave.
//
// As duas operações são as únicas seções críticas do sistema; ambas são
// O(1) e não podem suspender segurando exclusão. A espera em si acontece
// fora do registry.
type Registry interface {
	// MatchOrInsert executa a decisão atômica de chegada:
	//   - existe slot para a chave => remove, dispara o sinal dele e
	//     retorna (nil, true, nil); quem chamou é a segunda parte e
	//     nunca espera.
	//   - não existe => cria um slot novo (com o sinal alocado ANTES de
	//     publicar no mapa), insere e retorna (w, false, nil).
	// err só ocorre por exaustão de capacidade (ErrRegistryFull).
	MatchOrInsert(Key) (w Waiter, matched bool, err error)

	// Remove retira o slot da chave somente se ainda for o mesmo waiter.
	// Retorna false quando um matcher já levou o slot na janela da
	// corrida deadline/match — nesse caso o sinal do waiter já disparou
	// (ou vai disparar) e deve prevalecer sobre o timeout.
	Remove(Key, Waiter) bool
}

// ErrRegistryFull indica backpressure: o limite de esperas pendentes foi
// atingido. Não faz parte do contrato normal Matched/TimedOut; o adapter
// traduz para um status de indisponibilidade.
var ErrRegistryFull = errors.New("rendezvous: pending waits limit reached")
