package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/appwrite"
	"github.com/netchat/netchat/internal/config"
	"github.com/netchat/netchat/internal/handlers"
	"github.com/netchat/netchat/internal/hashing"
	"github.com/netchat/netchat/internal/ipify"
	"github.com/netchat/netchat/internal/services"
)

// Version is injected at build time via ldflags.
var Version = "dev"

func main() {
	// Load configuration from .env, NETCHAT_CONFIG and the environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogFormat != "json", os.Stderr)

	// Initialize the remote store client
	db := appwrite.NewClient(cfg)

	// Initialize services
	hasher := hashing.New(hashing.DefaultParams)
	channelService := services.NewChannelService(db, hasher, ipify.NewClient(cfg.IPLookupURL), cfg)
	messageService := services.NewMessageService(channelService, db, hasher, cfg)

	r, err := newRouter(cfg, handlers.NewChannelHandler(channelService), handlers.NewMessageHandler(messageService))
	if err != nil {
		log.Fatal().Err(err).Msg("[Server] Failed to build router")
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info().Str("addr", addr).Strs("cors", cfg.CORSOrigins).Msg("[Server] netchat backend starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("[Server] Stopped")
	}
}

// newRouter sets up the chi router with middleware and all routes.
func newRouter(cfg *config.Config, channelHandler *handlers.ChannelHandler, messageHandler *handlers.MessageHandler) (http.Handler, error) {
	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Middleware stack. CapturePeer must run before RealIP rewrites RemoteAddr.
	r.Use(handlers.CapturePeer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", handlers.HealthCheck(Version, time.Now()))

	// Endpoints that check channel passwords are throttled per client address
	limiter := handlers.NewPasswordLimiter(cfg.PasswordRateLimit, cfg.PasswordRateBurst, trusted...)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/create_channel", channelHandler.CreateChannel)
		r.With(limiter.Middleware).Post("/get_messages", messageHandler.GetMessages)
		r.With(limiter.Middleware).Post("/verify", channelHandler.Verify)

		r.Route("/channels", func(r chi.Router) {
			r.Get("/", channelHandler.ListChannels)
			r.Get("/network", channelHandler.NetworkChannel)
		})
	})

	return r, nil
}
