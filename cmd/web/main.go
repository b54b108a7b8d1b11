package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"resumidorDeAtas/internal/config"
	"resumidorDeAtas/internal/downloader"
	"resumidorDeAtas/internal/handlers"
	"resumidorDeAtas/internal/pipeline"
	"resumidorDeAtas/internal/segmenter"
	"resumidorDeAtas/internal/store"
	"resumidorDeAtas/internal/summarizer"
	"resumidorDeAtas/internal/transcriber"
	"resumidorDeAtas/internal/watcher"
	"resumidorDeAtas/pkg/executor"
)

var (
	configPath string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "resumidor",
	Short: "Transforma vídeos de sessões em atas resumidas.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia o servidor HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func main() {
	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "config.yaml", "Caminho do arquivo de configuração")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Endereço de escuta (sobrepõe o config)")
}

func serve() error {
	// Best effort; credentials may come from the real environment instead.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuração inválida: %w", err)
	}
	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Logging.Level)}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Paths.WorkDir, 0o755); err != nil {
		return fmt.Errorf("criar diretório de trabalho: %w", err)
	}

	client := openai.NewClient(cfg.OpenAIAPIKey)
	exec := executor.New()

	var completer summarizer.Completer
	switch cfg.Summarizer.Provider {
	case "gemini":
		completer = summarizer.NewGeminiCompleter(cfg.GeminiAPIKey, cfg.Summarizer.GeminiModel, cfg.Summarizer.Temperature)
	default:
		completer = summarizer.NewOpenAICompleter(client, cfg.Summarizer.ChatModel, cfg.Summarizer.Temperature)
	}

	pipe := pipeline.New(
		logger,
		downloader.NewService(exec, cfg.Media.MaxPayloadBytes),
		segmenter.NewService(exec),
		transcriber.NewService(client, cfg.Summarizer.WhisperModel, cfg.Media.Language, cfg.Limits.MaxConcurrentTranscription),
		summarizer.NewService(completer, cfg.Summarizer.ChunkWords),
		cfg.Paths.WorkDir,
		cfg.Media.MaxSegmentSeconds,
		time.Duration(cfg.Limits.CallTimeoutSeconds)*time.Second,
	)

	app := handlers.NewApp(logger, store.NewMemory(), pipe, cfg.Paths.WorkDir, cfg.Server.AllowedOrigins, cfg.Limits.MaxConcurrentJobs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Paths.WatchDir != "" {
		if err := os.MkdirAll(cfg.Paths.WatchDir, 0o755); err != nil {
			return fmt.Errorf("criar diretório de entrada: %w", err)
		}
		w, err := watcher.New(cfg.Paths.WatchDir, app.SubmitJob, logger)
		if err != nil {
			return fmt.Errorf("criar watcher: %w", err)
		}
		defer w.Stop()

		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watcher failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", cfg.Server.Addr, "provider", cfg.Summarizer.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("servidor falhou: %w", err)
	case <-sigCh:
		logger.Info("shutdown signal received")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		_ = srv.Close()
	}

	logger.Info("waiting for in-flight jobs")
	app.Wait()
	logger.Info("server stopped")
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
