package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/jonathan/jobsearch/internal/app"
	"github.com/jonathan/jobsearch/internal/config"
	"github.com/jonathan/jobsearch/internal/jobapi"
	"github.com/jonathan/jobsearch/internal/kvstore"
	"github.com/jonathan/jobsearch/internal/notify"
)

// loadConfig resolves settings: config file, then defaults, then environment, then flags.
func loadConfig() (config.Config, error) {
	var fileCfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	cfg := fileCfg.MergeWithDefaults(config.Defaults())
	cfg.ApplyEnv()

	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if storeBackend != "" {
		cfg.Store = storeBackend
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// session is an App plus the resources it owns.
type session struct {
	app   *app.App
	store kvstore.Store
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		log.Printf("[jobsearch] failed to close store: %v", err)
	}
}

// openSession builds the App for one command. Toasts are echoed to out as they appear
// only when echo is set.
func openSession(ctx context.Context, out io.Writer, echo bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client, err := jobapi.NewClient(cfg.ClientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	store, err := kvstore.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open bookmark store: %w", err)
	}

	toastOpts := []notify.ToasterOption{notify.WithTTL(cfg.ToastTTL.Std())}
	if echo {
		toastOpts = append(toastOpts, notify.WithWriter(out))
	}

	a, err := app.New(ctx, app.Options{
		API:           client,
		Store:         store,
		Toaster:       notify.NewToaster(toastOpts...),
		StaleTime:     cfg.StaleTime.Std(),
		DebounceDelay: cfg.DebounceDelay.Std(),
		PageSize:      cfg.PageSize,
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	if cfg.Verbose {
		log.Printf("[jobsearch] api=%s store=%s", client.BaseURL(), cfg.Store)
	}
	return &session{app: a, store: store}, nil
}
