package rendezvous

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rendezvous-service/rendezvous/infra"
)

type response struct {
	code int
	body string
}

func postArrival(h http.Handler, id string) response {
	r := httptest.NewRequest(http.MethodPost, "http://example/wait-for-second-party/"+id, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return response{w.Code, w.Body.String()}
}

// waitForPending espera o registry ter `n` esperas pendentes.
func waitForPending(t *testing.T, reg *infra.Registry, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if reg.Pending() == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d pending waits, got %d", n, reg.Pending())
}

func TestHandler_PairSyncs(t *testing.T) {
	reg := infra.NewRegistry()
	h := Handler(Options{Registry: reg, Timeout: 2 * time.Second})

	first := make(chan response, 1)
	go func() {
		first <- postArrival(h, "test-id")
	}()

	// garante que a primeira parte já está esperando antes da segunda chegar
	waitForPending(t, reg, 1)

	second := postArrival(h, "test-id")
	if second.code != http.StatusOK || second.body != "Synced" {
		t.Fatalf("expected second party 200 Synced, got %d %q", second.code, second.body)
	}

	select {
	case res := <-first:
		if res.code != http.StatusOK || res.body != "Synced" {
			t.Fatalf("expected first party 200 Synced, got %d %q", res.code, res.body)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting first party response")
	}

	if reg.Pending() != 0 {
		t.Fatalf("expected empty registry after match, got %d", reg.Pending())
	}
}

func TestHandler_LoneArrivalTimesOut(t *testing.T) {
	reg := infra.NewRegistry()
	h := Handler(Options{Registry: reg, Timeout: 60 * time.Millisecond})

	start := time.Now()
	res := postArrival(h, "timeout-id")
	elapsed := time.Since(start)

	if res.code != http.StatusRequestTimeout || res.body != "Timeout" {
		t.Fatalf("expected 408 Timeout, got %d %q", res.code, res.body)
	}
	// nunca imediato: só depois do deadline
	if elapsed < 60*time.Millisecond {
		t.Fatalf("expected timeout only after the deadline, returned in %s", elapsed)
	}
	if reg.Pending() != 0 {
		t.Fatalf("expected slot cleanup after timeout, got %d pending", reg.Pending())
	}
}

func TestHandler_ArrivalAfterTimeoutIsFreshWait(t *testing.T) {
	reg := infra.NewRegistry()
	h := Handler(Options{Registry: reg, Timeout: 40 * time.Millisecond})

	if res := postArrival(h, "k"); res.code != http.StatusRequestTimeout {
		t.Fatalf("expected first arrival to time out, got %d", res.code)
	}

	// a chegada seguinte não pode casar com o slot abandonado
	if res := postArrival(h, "k"); res.code != http.StatusRequestTimeout {
		t.Fatalf("expected fresh wait to time out again, got %d", res.code)
	}
}

func TestHandler_ThirdArrivalAfterMatchIsFreshWait(t *testing.T) {
	reg := infra.NewRegistry()
	h := Handler(Options{Registry: reg, Timeout: 40 * time.Millisecond})

	first := make(chan response, 1)
	go func() {
		first <- postArrival(h, "k")
	}()
	waitForPending(t, reg, 1)

	if res := postArrival(h, "k"); res.code != http.StatusOK {
		t.Fatalf("expected pair to sync, got %d", res.code)
	}
	<-first

	// terceiro chegando depois do par inicia espera nova, não match instantâneo
	if res := postArrival(h, "k"); res.code != http.StatusRequestTimeout {
		t.Fatalf("expected third arrival to start a fresh wait, got %d", res.code)
	}
}

func TestHandler_DistinctIdentifiersNeverMatch(t *testing.T) {
	reg := infra.NewRegistry()
	h := Handler(Options{Registry: reg, Timeout: 60 * time.Millisecond})

	first := make(chan response, 1)
	go func() {
		first <- postArrival(h, "k1")
	}()
	waitForPending(t, reg, 1)

	// identificador diferente não casa: também vira espera e expira
	if res := postArrival(h, "k2"); res.code != http.StatusRequestTimeout {
		t.Fatalf("expected k2 to time out independently, got %d", res.code)
	}
	if res := <-first; res.code != http.StatusRequestTimeout {
		t.Fatalf("expected k1 to time out independently, got %d", res.code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := Handler(Options{Registry: infra.NewRegistry()})

	r := httptest.NewRequest(http.MethodGet, "http://example/wait-for-second-party/k", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if got := w.Header().Get("Allow"); got != http.MethodPost {
		t.Fatalf("expected Allow: POST, got %q", got)
	}
}

func TestHandler_MissingIdentifier(t *testing.T) {
	h := Handler(Options{Registry: infra.NewRegistry()})

	r := httptest.NewRequest(http.MethodPost, "http://example/wait-for-second-party/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty identifier, got %d", w.Code)
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	h := Handler(Options{Registry: infra.NewRegistry()})

	for _, path := range []string{"/other", "/wait-for-second-party/a/b"} {
		r := httptest.NewRequest(http.MethodPost, "http://example"+path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %q, got %d", path, w.Code)
		}
	}
}

func TestHandler_BusyWhenRegistryFull(t *testing.T) {
	reg := infra.NewRegistry(infra.WithMaxPending(1))
	h := Handler(Options{Registry: reg, Timeout: 500 * time.Millisecond})

	first := make(chan response, 1)
	go func() {
		first <- postArrival(h, "a")
	}()
	waitForPending(t, reg, 1)

	if res := postArrival(h, "b"); res.code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when registry is full, got %d", res.code)
	}

	// o waiter pendurado termina por timeout normalmente
	if res := <-first; res.code != http.StatusRequestTimeout {
		t.Fatalf("expected pending waiter to time out, got %d", res.code)
	}
}

func TestHandler_RecordsStats(t *testing.T) {
	stats := infra.NewMemoryStatsStore(infra.WithTrackKeys(true))
	reg := infra.NewRegistry()
	h := Handler(Options{Registry: reg, Timeout: 30 * time.Millisecond, Stats: stats})

	if res := postArrival(h, "x"); res.code != http.StatusRequestTimeout {
		t.Fatalf("expected timeout, got %d", res.code)
	}

	total := stats.Total()
	if total.TimedOut != 1 || total.Matched != 0 {
		t.Fatalf("expected timeout=1 matched=0, got %+v", total)
	}
	if c := stats.ByKey()["x"]; c.TimedOut != 1 {
		t.Fatalf("expected per-key timeout=1, got %+v", c)
	}
}
