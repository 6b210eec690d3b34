package domain

// Limiter representa algo que pode decidir se uma chegada é permitida
// agora.
//
// Observação: a implementação pode ser token-bucket, leaky-bucket, etc.
// A camada de infra pode usar libs como golang.org/x/time/rate.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por identificador de rendezvous.
// A implementação pode manter cache, TTL, etc.
type LimiterStore interface {
	Get(Key) Limiter
}
