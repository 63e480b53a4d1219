package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/voicebudget/voice-ledger/internal/api"
	"github.com/voicebudget/voice-ledger/internal/audio"
	"github.com/voicebudget/voice-ledger/internal/classifier"
	"github.com/voicebudget/voice-ledger/internal/config"
	"github.com/voicebudget/voice-ledger/internal/events"
	"github.com/voicebudget/voice-ledger/internal/httpclient"
	"github.com/voicebudget/voice-ledger/internal/ledger"
	"github.com/voicebudget/voice-ledger/internal/storage/memory"
	"github.com/voicebudget/voice-ledger/internal/storage/sqlite"
	"github.com/voicebudget/voice-ledger/internal/transcription"
	"github.com/voicebudget/voice-ledger/internal/voice"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

func main() {
	defaultPath := os.Getenv("VOICE_LEDGER_CONFIG")
	if defaultPath == "" {
		defaultPath = config.DefaultPath
	}
	configPath := flag.String("config", defaultPath, "path to the TOML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "voice-ledger: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher ledger.EventPublisher
	if cfg.Events.Enabled {
		amqp, err := events.NewAMQPPublisher(cfg.Events, log)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP: %w", err)
		}
		defer amqp.Close()
		publisher = amqp
	}

	providerTimeout := time.Duration(cfg.Completion.TimeoutSeconds) * time.Second
	httpClient := httpclient.New(providerTimeout)

	transcriber, err := transcription.New(ctx, cfg.Transcription, transcription.Deps{
		HTTPClient: httpClient,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}
	completer := classifier.NewChatClient(cfg.Completion, httpClient, log)

	intake, err := audio.NewIntake(cfg.Transcription.Encoding, cfg.Transcription.SampleRateHertz, cfg.Server.MaxUploadBytes())
	if err != nil {
		return err
	}

	records := ledger.NewService(store, publisher, log)
	pipeline := voice.NewPipeline(transcriber, completer, records, log)
	router := api.NewRouter(records, pipeline, intake, cfg.Server.CORSAllowedOrigins, log)

	srv := &http.Server{
		Handler:           router.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	listener, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr(), err)
	}
	if cfg.Server.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.Server.MaxConnections)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting voice-ledger server",
			logger.String("addr", listener.Addr().String()),
			logger.String("storage", cfg.Storage.Backend),
			logger.String("transcription", cfg.Transcription.Provider),
			logger.String("model", cfg.Completion.Model),
			logger.Bool("events", cfg.Events.Enabled),
			logger.Strings("cors_allowed_origins", cfg.Server.CORSAllowedOrigins))
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", logger.Error(err))
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}

// openStore returns the configured record store and its cleanup function
func openStore(cfg config.StorageConfig, log *logger.Logger) (ledger.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		log.Info("Using in-memory record store")
		return memory.New(), func() {}, nil
	default:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		log.Info("Using sqlite record store", logger.String("path", cfg.SQLitePath))
		return sqlite.NewRecordStorage(db, log), func() { db.Close() }, nil
	}
}
