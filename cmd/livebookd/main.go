package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/livebookd/livebook/internal/config"
	"github.com/livebookd/livebook/internal/exchange"
	"github.com/livebookd/livebook/internal/httpapi"
	"github.com/livebookd/livebook/internal/orderbook"
	"github.com/livebookd/livebook/internal/registry"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	configPath := flag.String("config", "", "path to a livebookd config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("livebookd: %v", err)
	}

	pairs := make([]orderbook.Pair, 0, len(cfg.Pairs))
	for _, symbol := range cfg.Pairs {
		pair, ok := orderbook.ParsePair(symbol)
		if !ok {
			log.Fatalf("livebookd: unknown configured pair %q", symbol)
		}
		pairs = append(pairs, pair)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// 1. Gap notifications from the registry trigger gateway resync.
	gaps := make(chan registry.GapNotice, 16)

	// 2. Order book registry — single owner, one actor goroutine.
	reg := registry.New(gaps, cfg.Verbose)
	go reg.Run()

	// 3. Exchange gateway — REST snapshot + websocket diff stream.
	gw := exchange.NewGateway(exchange.Config{
		RESTBaseURL:   cfg.RESTBaseURL,
		WSBaseURL:     cfg.WSBaseURL,
		ReconnectBase: cfg.ReconnectBase,
		ReconnectMax:  cfg.ReconnectMax,
	}, reg, nil)
	go gw.Run(ctx, pairs)
	go gw.WatchGaps(ctx, gaps)

	// 4. HTTP API.
	api := httpapi.New(reg)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("livebookd: listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("livebookd: http server: %v", err)
		}
	}()

	// 5. Shutdown.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("livebookd: shutting down...")
	cancel()
	reg.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("livebookd: http server shutdown: %v", err)
	}
}
