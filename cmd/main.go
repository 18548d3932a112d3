package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xray-insights/config"
	"xray-insights/internal/api/telegram"
	"xray-insights/internal/api/web"
	"xray-insights/internal/container"
	"xray-insights/internal/infrastructure/analyzer"
	"xray-insights/internal/infrastructure/storage"
	"xray-insights/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := analyzer.NewHTTPAnalyzer(cfg.AnalyzeURL, cfg.HealthURL, cfg.AnalyzeTimeout)
	if err != nil {
		log.Fatalf("Failed to create analyzer client: %v", err)
	}

	// Сессии живут в памяти процесса
	sessionRepo := storage.NewMemorySessionRepository()
	go sessionRepo.RunJanitor(ctx, cfg.SessionTTL, time.Minute)

	appContainer := container.New(sessionRepo, client, vision.NewGoCVPreviewer(cfg.PreviewMaxSide))

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.ScanService)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}

		go func() {
			log.Println("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()
	}

	log.Printf("Sending X-rays to %s", cfg.AnalyzeURL)

	server := web.NewServer(appContainer.ScanService, appContainer.Previewer, cfg.MaxUploadBytes())
	if err := server.Run(ctx, cfg.HTTPAddr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
