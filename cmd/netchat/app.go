package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/netchat/netchat/internal/appwrite"
	"github.com/netchat/netchat/internal/cache"
	"github.com/netchat/netchat/internal/config"
	"github.com/netchat/netchat/internal/hashing"
	"github.com/netchat/netchat/internal/ipify"
	"github.com/netchat/netchat/internal/services"
	"github.com/netchat/netchat/internal/storage"
)

// app holds everything a command needs.
type app struct {
	store     storage.Scoped
	channels  *services.ChannelService
	cache     *cache.ChannelCache
	directory *services.Directory
	messages  *services.MessageService
}

// newApp wires the client components. store may be nil when no local storage
// is usable.
func newApp(cfg *config.Config, db services.DocumentStore, ip services.IPSource, store storage.Scoped) *app {
	hasher := hashing.New(hashing.DefaultParams)
	channels := services.NewChannelService(db, hasher, ip, cfg)
	channelCache := cache.NewChannelCache(store, channels.DefaultChannels)
	return &app{
		store:     store,
		channels:  channels,
		cache:     channelCache,
		directory: services.NewDirectory(channels, channelCache),
		messages:  services.NewMessageService(channels, db, hasher, cfg),
	}
}

var current *app

// loadApp returns the app for this invocation, building it from the
// configuration on first use.
var loadApp = func(cmd *cobra.Command) (*app, error) {
	if current != nil {
		return current, nil
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		os.Setenv("NETCHAT_CONFIG", path)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backend, _ := cmd.Flags().GetString("storage"); backend != "" {
		cfg.StorageBackend = backend
	}
	level := cfg.LogLevel
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}
	config.SetupLogging(level, true, cmd.ErrOrStderr())

	store, _ := storage.Probe(cmd.Context(), storage.Options{
		Backend:  cfg.StorageBackend,
		Path:     cfg.StoragePath,
		RedisURL: cfg.RedisURL,
	})

	current = newApp(cfg, appwrite.NewClient(cfg), ipify.NewClient(cfg.IPLookupURL), store)
	return current, nil
}

func closeApp() error {
	if current == nil {
		return nil
	}
	var err error
	if current.store != nil {
		err = current.store.Close()
	}
	current = nil
	return err
}
