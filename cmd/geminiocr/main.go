package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jo-hoe/geminiocr/internal/common"
	appcfg "github.com/jo-hoe/geminiocr/internal/config"
	"github.com/jo-hoe/geminiocr/internal/i18n"
	"github.com/jo-hoe/geminiocr/internal/llm"
	"github.com/jo-hoe/geminiocr/internal/llm/gemini"
	"github.com/jo-hoe/geminiocr/internal/llm/genaisdk"
	"github.com/jo-hoe/geminiocr/internal/llm/mock"
	"github.com/jo-hoe/geminiocr/internal/llm/openai"
	"github.com/jo-hoe/geminiocr/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default $GEMINIOCR_CONFIG or ./config.yaml)")
	imagePath := flag.String("image", "", "recognize a single image file and print the text")
	lang := flag.String("lang", "", "language hint passed to the recognizer")
	flag.Parse()

	// Load config
	cfg, err := appcfg.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	// Logger
	level, _ := appcfg.ParseLogLevel(cfg.Server.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// LLM client
	llmClient, err := newLLMClient(cfg.LLM, logger)
	if err != nil {
		logger.Error("init llm", "provider", cfg.LLM.Provider, "err", err)
		os.Exit(1)
	}

	rootCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *imagePath != "" {
		if err := recognizeFile(rootCtx, llmClient, *imagePath, *lang); err != nil {
			logger.Error("recognize", "image", *imagePath, "err", err)
			cancel()
			os.Exit(1)
		}
		return
	}

	svc := &server.Service{
		Log: logger,
		Cfg: cfg,
		LLM: llmClient,
	}
	httpSrv := server.NewHTTPServer(svc)

	// Run server in background
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "address", cfg.Server.Addr, "provider", cfg.LLM.Provider)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error
	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "err", err)
		}
	}

	// Graceful shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	logger.Info("server stopped")
}

func newLLMClient(cfg appcfg.LLMConfig, logger *slog.Logger) (llm.Client, error) {
	lang := i18n.Parse(cfg.Language)
	switch cfg.Provider {
	case common.ProviderGemini:
		return gemini.New(cfg.Gemini, lang, gemini.WithLogger(logger)), nil
	case common.ProviderGenAI:
		return genaisdk.New(cfg.Gemini, lang, logger), nil
	case common.ProviderOpenAI:
		return openai.New(cfg.OpenAI, lang), nil
	case common.ProviderMock:
		return mock.New(cfg.Mock), nil
	}
	return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
}

func recognizeFile(ctx context.Context, client llm.Client, path, lang string) error {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path comes from the operator
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	text, err := client.Recognize(ctx, base64.StdEncoding.EncodeToString(data), lang)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
