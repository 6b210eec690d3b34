package domain

import (
	"context"
	"time"
)

// StatsEvent representa o desfecho de uma chegada ao rendezvous.
//
// Observação: cuidado com cardinalidade ao habilitar rastreio por chave
// (identificadores são opacos e podem explodir o número de chaves em uma
// base como Redis).
type StatsEvent struct {
	Key     Key
	Outcome Outcome

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de
// sincronização.
//
// Implementações podem armazenar em Redis, memória, etc.
// O adapter deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
