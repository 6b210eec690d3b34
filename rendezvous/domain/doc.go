// Package domain define contratos e tipos de domínio para o ponto de
// encontro (rendezvous) entre duas partes.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar a regra de
// sincronização de detalhes de infraestrutura.
package domain
