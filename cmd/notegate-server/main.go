package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"notegate/internal/adapters/evernote"
	"notegate/internal/platform/config"
	"notegate/internal/platform/logger"
	phttp "notegate/internal/platform/net/http"
	"notegate/internal/platform/net/middleware"
	"notegate/internal/services/api"
	"notegate/internal/services/auth"
	"notegate/internal/services/notes"
)

const version = "0.2.0"

func main() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	root := config.New()
	enCfg := root.Prefix("EVERNOTE_")
	apiCfg := root.Prefix("API_")

	// bring up logging early
	l := logger.Get()

	client := evernote.New(evernote.Options{
		BaseURL:        enCfg.MayString("BASE_URL", "https://www.evernote.com"),
		ConsumerKey:    enCfg.MayString("CONSUMER_KEY", ""),
		ConsumerSecret: enCfg.MayString("CONSUMER_SECRET", ""),
		CallbackURL:    enCfg.MayString("CALLBACK_URL", "http://127.0.0.1:8787/oauth/callback"),
		Timeout:        enCfg.MayDuration("TIMEOUT", 0),
	})

	store, err := credentialStore(enCfg)
	if err != nil {
		l.Panic().Err(err).Msg("credential store init failed")
	}

	mgr := auth.NewManager(client, store, auth.NewTxnStore())

	cache := notes.NewCache(apiCfg.MayDuration("CACHE_TTL", notes.DefaultTTL))
	svc := notes.NewService(client, mgr, cache)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache.StartSweeper(ctx, apiCfg.MayDuration("CACHE_SWEEP", notes.DefaultSweepInterval))

	// http server (reads API_ADDR / API_CORS)
	srv := phttp.NewServer(apiCfg)
	r := srv.Router()
	r.Use(
		middleware.RequestID,
		middleware.AccessLog(middleware.AccessLogOptions{}),
		middleware.Metrics,
		middleware.RecoverJSON,
	)
	api.Mount(r, api.Deps{Auth: mgr, Notes: svc, Version: version})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

// credentialStore picks the backing for the single stored credential.
// An env-injected token wins over the file so containerized runs need no
// writable state; otherwise the credential lives in a 0600 JSON file
func credentialStore(cfg config.Conf) (auth.Store, error) {
	if token := cfg.MayString("ACCESS_TOKEN", ""); token != "" {
		return &auth.EnvStore{
			Token:        token,
			NoteStoreURL: cfg.MayString("NOTESTORE_URL", ""),
		}, nil
	}
	path := cfg.MayString("CREDENTIAL_FILE", "")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".notegate", "credential.json")
	}
	return auth.NewFileStore(path)
}
