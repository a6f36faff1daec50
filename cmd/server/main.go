package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mycollege/chatbot-engine/internal/ai"
	"github.com/mycollege/chatbot-engine/internal/chat"
	"github.com/mycollege/chatbot-engine/internal/config"
	"github.com/mycollege/chatbot-engine/internal/db"
	"github.com/mycollege/chatbot-engine/internal/httpapi"
	"github.com/mycollege/chatbot-engine/internal/httpapi/handlers"
	"github.com/mycollege/chatbot-engine/internal/store/rabbitmq"
	"github.com/mycollege/chatbot-engine/pkg/zlog"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	zlog.Init(cfg.LogPath)
	defer zlog.Sync()

	if cfg.GeminiAPIKey == "" {
		zlog.Warnf("GEMINI_API_KEY is not set; chat requests will fail fast")
	}

	gdb := db.Connect(cfg.DBDSN)

	client := ai.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	registry := chat.NewRegistry(func() chat.Sender { return client.NewChat() })
	repo := chat.NewRepo(gdb)
	svc := chat.NewService(repo, registry, chat.NewCaller(chat.MaxRetries, chat.BaseDelay))

	var events *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			zlog.Warnf("feedback event feed disabled: %v", err)
		} else {
			events = p
			defer events.Close()
		}
	}

	h := handlers.NewHandler(svc, events)
	r := httpapi.NewRouter(h)

	addr := fmt.Sprintf(":%d", cfg.Port)
	zlog.Infof("chatbot engine listening on %s, model %s", addr, cfg.GeminiModel)
	if err := r.Run(addr); err != nil {
		zlog.Fatalf("server: %v", err)
	}
}
