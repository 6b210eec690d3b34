package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"rendezvous-service/rendezvous"
	"rendezvous-service/rendezvous/domain"
	"rendezvous-service/rendezvous/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var regOpts []infra.RegistryOption
	if cfg.maxPending > 0 {
		regOpts = append(regOpts, infra.WithMaxPending(cfg.maxPending))
	}
	registry := infra.NewRegistry(regOpts...)

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := rendezvous.Handler(rendezvous.Options{
		Registry:   registry,
		Timeout:    cfg.syncTimeout,
		Stats:      statsStore,
		PathPrefix: cfg.pathPrefix,
	})
	if cfg.rateEnabled {
		store := infra.NewLimiterStore(cfg.rateRPS, cfg.rateBurst)
		store.StartJanitor(ctx)
		h = rendezvous.RateLimitMiddleware(rendezvous.RateLimitOptions{
			Store:        store,
			PathPrefix:   cfg.pathPrefix,
			RejectStatus: http.StatusTooManyRequests,
			RetryAfter:   cfg.retryAfter,
		})(h)
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// IMPORTANTE: a resposta só sai depois da espera pela segunda
		// parte; o write timeout precisa ser maior que o deadline de
		// sincronização, senão o servidor corta waiters legítimos.
		WriteTimeout: cfg.syncTimeout + 30*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.syncTimeout+5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("rendezvous listening on %s prefix=%q timeout=%s maxPending=%d", cfg.listenAddr, cfg.pathPrefix, cfg.syncTimeout, cfg.maxPending)
	log.Printf("rate: enabled=%v rps=%.3f burst=%d", cfg.rateEnabled, cfg.rateRPS, cfg.rateBurst)
	log.Printf("stats: enabled=%v redisAddr=%q bucket=%q ttl=%s trackKeys=%v", cfg.statsEnabled, cfg.statsRedisAddr, cfg.statsBucket, cfg.statsTTL, cfg.statsTrackKeys)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr  string
	pathPrefix  string
	syncTimeout time.Duration
	maxPending  int

	rateEnabled bool
	rateRPS     float64
	rateBurst   int
	retryAfter  time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":3030")
	cfg.pathPrefix = getenvDefault("SYNC_PATH_PREFIX", rendezvous.DefaultPathPrefix)
	cfg.syncTimeout = getenvDurationDefault("SYNC_TIMEOUT", 10*time.Second)
	cfg.maxPending = getenvIntDefault("MAX_PENDING", 0)

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", false)
	cfg.rateRPS = getenvFloatDefault("RATE_RPS", 10)
	cfg.rateBurst = getenvIntDefault("RATE_BURST", 20)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "rendezvous:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("STATS_TRACK_KEYS", false)

	if !strings.HasPrefix(cfg.pathPrefix, "/") || !strings.HasSuffix(cfg.pathPrefix, "/") {
		return config{}, errors.New("SYNC_PATH_PREFIX must start and end with '/'")
	}
	if cfg.syncTimeout <= 0 {
		return config{}, errors.New("SYNC_TIMEOUT must be > 0")
	}
	if cfg.maxPending < 0 {
		return config{}, errors.New("MAX_PENDING must be >= 0")
	}
	if cfg.rateEnabled && cfg.rateRPS <= 0 {
		return config{}, errors.New("RATE_RPS must be > 0")
	}
	if cfg.rateEnabled && cfg.rateBurst <= 0 {
		return config{}, errors.New("RATE_BURST must be > 0")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
