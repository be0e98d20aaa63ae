package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tycoon.gg/internal/auto"
	persistlog "tycoon.gg/internal/persistence/log"
	"tycoon.gg/internal/persistence/policystore"
	"tycoon.gg/internal/protocol"
	"tycoon.gg/internal/session"
	"tycoon.gg/internal/trade"
	"tycoon.gg/internal/tuning"
)

func main() {
	var (
		url        = flag.String("url", "ws://localhost:8080/v1/ws", "session server ws url")
		name       = flag.String("name", "", "player name (required)")
		lobby      = flag.String("lobby", "", "lobby id (required)")
		token      = flag.String("token", "", "auth token (or TYCOON_TOKEN)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		schemaDir  = flag.String("schemas", "./schemas", "JSON Schema directory (empty to skip wire validation)")
		listen     = flag.String("listen", "127.0.0.1:9180", "http listen address for /metrics and /policy (empty to disable)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[autoplayer] ", log.LstdFlags|log.Lmicroseconds)

	if *name == "" || *lobby == "" {
		logger.Fatalf("missing -name or -lobby")
	}
	authToken := strings.TrimSpace(*token)
	if authToken == "" {
		authToken = strings.TrimSpace(os.Getenv("TYCOON_TOKEN"))
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	store, err := policystore.Open(filepath.Join(*dataDir, "policies.db"))
	if err != nil {
		logger.Fatalf("open policy store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policy, err := store.Load(ctx, *lobby, *name)
	if err != nil {
		logger.Fatalf("load policy: %v", err)
	}
	logger.Printf("policy loaded: %+v", policy)

	lobbyDir := filepath.Join(*dataDir, "lobbies", *lobby)
	snapLog := persistlog.NewSnapshotLogger(lobbyDir)
	defer snapLog.Close()
	actLog := persistlog.NewActionLogger(lobbyDir)
	defer actLog.Close()

	a := &app{
		log:      logger,
		player:   *name,
		lobby:    *lobby,
		book:     trade.NewBook(),
		store:    store,
		snapLog:  snapLog,
		actLog:   actLog,
		states:   make(chan *protocol.StateMsg, 1),
		trades:   make(chan protocol.TradeMsg, 16),
		policies: make(chan auto.Policy, 1),
		fetched:  make(map[string]bool),
	}

	a.engine = auto.New(auto.Config{
		Player:       *name,
		Policy:       policy,
		Clock:        auto.RealClock(),
		RollDelay:    tune.RollDelay(),
		EndTurnDelay: tune.EndTurnDelay(),
		RescueRetry:  tune.RescueRetry(),
		DedupeTTL:    uint64(tune.DedupeVersions),
		OnReset: func(p auto.Policy) {
			logger.Printf("game ended, policy reset to defaults")
			a.book.Reset()
			if err := store.Clear(ctx, *lobby, *name); err != nil {
				logger.Printf("clear policy: %v", err)
			}
		},
	})

	a.mirrorPolicy()

	var validator *protocol.Validator
	if *schemaDir != "" {
		validator, err = protocol.LoadValidator(*schemaDir)
		if err != nil {
			logger.Fatalf("load schemas: %v", err)
		}
	}

	a.sess, err = session.New(session.Config{
		URL:          *url,
		PlayerName:   *name,
		LobbyID:      *lobby,
		Token:        authToken,
		Logger:       logger,
		WriteTimeout: tune.WriteTimeout(),
		PingInterval: tune.PingInterval(),
		ReconnectMin: tune.ReconnectMin(),
		ReconnectMax: tune.ReconnectMax(),
		Validator:    validator,
		OnState:      a.onState,
		OnAck:        a.onAck,
		OnTrade:      a.onTrade,
	})
	if err != nil {
		logger.Fatalf("session: %v", err)
	}

	if *listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/policy", a.policyHandler(ctx))
		srv := &http.Server{Addr: *listen, Handler: mux}
		go func() {
			logger.Printf("http listening on %s", *listen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("http: %v", err)
			}
		}()
		defer srv.Close()
	}

	go a.run(ctx)
	go func() {
		if err := a.sess.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Printf("session ended: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Printf("shutting down")
	cancel()
}
