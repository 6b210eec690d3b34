package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// Exemplo: duas partes chegando ao mesmo identificador, com 100ms entre
// elas. Contra um servidor rodando (cmd/rendezvous), ambas devem
// imprimir 200 "Synced".
func main() {
	base := getenvDefault("SERVER_URL", "http://localhost:3030")
	id := "example-pair"
	if len(os.Args) > 1 {
		id = os.Args[1]
	}
	url := base + "/wait-for-second-party/" + id

	client := &http.Client{Timeout: 30 * time.Second}

	var wg sync.WaitGroup
	arrive := func(party string) {
		defer wg.Done()
		resp, err := client.Post(url, "text/plain", nil)
		if err != nil {
			fmt.Printf("%s: erro: %v\n", party, err)
			return
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("%s: %d %s\n", party, resp.StatusCode, string(body))
	}

	wg.Add(2)
	go arrive("party-1")
	time.Sleep(100 * time.Millisecond)
	go arrive("party-2")
	wg.Wait()
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
