// Package application contém o caso de uso central do rendezvous: a
// decisão de chegada (casar ou esperar) e a corrida entre o sinal de
// conclusão e o deadline.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Arrive(key) retorna um Outcome (Matched/TimedOut).
package application
