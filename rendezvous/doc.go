// Package rendezvous fornece o adapter HTTP (net/http) do ponto de
// encontro entre duas partes.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: caso de uso (decisão casar/esperar, corrida sinal vs deadline) sem net/http
//   - infra: implementações concretas (registry em memória, token bucket, stats), detalhes de infraestrutura
//   - rendezvous (este pacote): handler HTTP + middleware + tradução para status/corpo
//
// Fluxo no serviço:
//
//  1. Extrai o identificador do path (POST /wait-for-second-party/{id})
//  2. Chama a camada application para chegar ao rendezvous
//  3. Matched responde 200 "Synced"; TimedOut responde 408 "Timeout"
//  4. Exaustão de capacidade (registry cheio) responde 503
//
// Variáveis de ambiente do binário (cmd/rendezvous) controlam o
// comportamento, como SYNC_TIMEOUT, MAX_PENDING, RATE_RPS e STATS_*.
package rendezvous
