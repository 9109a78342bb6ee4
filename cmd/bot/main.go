// cmd/bot/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expense-tracker/internal/backend"
	"expense-tracker/internal/bot"
	"expense-tracker/internal/config"
	"expense-tracker/internal/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.TelegramBotToken == "" {
		log.Error("TELEGRAM_BOT_TOKEN not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := backend.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}
	defer be.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}
	log.Info("🤖 Bot started", "username", api.Self.UserName)

	handler := bot.New(be.Service, log)
	downloader := &http.Client{Timeout: 30 * time.Second}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info("Bot stopped")
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			msg := update.Message
			log.Info("📥 Message received", "chat_id", msg.Chat.ID, "text", msg.Text)

			var reply string
			if msg.Document != nil {
				reply = handleDocument(ctx, api, downloader, handler, msg.Document, cfg.MaxUploadBytes)
			} else {
				reply = handler.HandleText(ctx, msg.Text)
			}

			if _, err := api.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
				log.Error("Failed to send reply", "chat_id", msg.Chat.ID, "error", err)
			}
		}
	}
}

func handleDocument(ctx context.Context, api *tgbotapi.BotAPI, client *http.Client, h *bot.Bot, doc *tgbotapi.Document, maxBytes int64) string {
	if !strings.EqualFold(filepath.Ext(doc.FileName), ".csv") {
		return "Only .csv files can be imported"
	}
	if maxBytes > 0 && int64(doc.FileSize) > maxBytes {
		return fmt.Sprintf("File is too large (limit %d bytes)", maxBytes)
	}

	url, err := api.GetFileDirectURL(doc.FileID)
	if err != nil {
		slog.Error("Failed to resolve file URL", "file_id", doc.FileID, "error", err)
		return "❌ Could not download the file"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "❌ Could not download the file"
	}
	resp, err := client.Do(req)
	if err != nil {
		slog.Error("Failed to download file", "file", doc.FileName, "error", err)
		return "❌ Could not download the file"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Unexpected download status", "file", doc.FileName, "status", resp.StatusCode)
		return "❌ Could not download the file"
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes)
	}
	return h.HandleDocument(ctx, doc.FileName, body)
}
