// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - Registry: mapa chave -> slot pendente guardado por mutex
//   - LimiterStore: token bucket por identificador usando golang.org/x/time/rate
//   - MemoryStatsStore / RedisStatsStore: persistência de estatísticas
package infra
