package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/config"
	"github.com/openleadr/openleadr-go/internal/db"
	"github.com/openleadr/openleadr-go/internal/httpapi"
	"github.com/openleadr/openleadr-go/internal/mdns"
	"github.com/openleadr/openleadr-go/internal/notifier"
	"github.com/openleadr/openleadr-go/internal/storage/postgres"
)

const apiVersion = "3.1"

func vtnCmd() *cobra.Command {
	var withMdns bool

	cmd := &cobra.Command{
		Use:   "vtn",
		Short: "Run the Virtual Top Node server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVtn(cmd.Context(), withMdns)
		},
	}
	cmd.Flags().BoolVar(&withMdns, "mdns", true, "advertise the VTN via mDNS")
	return cmd
}

func runVtn(parent context.Context, withMdns bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	store := postgres.New(pool)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	manager, oauthEnabled, err := buildJWTManager(cfg)
	if err != nil {
		return err
	}

	fanout := notifier.New(store.Subscriptions())
	defer fanout.Close()

	server := &httpapi.Server{
		Store:        store,
		JWT:          manager,
		Notifier:     fanout,
		OAuthEnabled: oauthEnabled,
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if withMdns {
		localURL := fmt.Sprintf("http://%s:%d/%s", mdnsHost(cfg), cfg.Port, cfg.Mdns.BasePath)
		ad, err := mdns.Register(mdns.Advertisement{
			ServiceType:  cfg.Mdns.ServiceType,
			InstanceName: cfg.Mdns.ServerName,
			HostName:     cfg.Mdns.HostName,
			IPAddress:    cfg.Mdns.IPAddress,
			Port:         cfg.Port,
			Version:      apiVersion,
			BasePath:     cfg.Mdns.BasePath,
			LocalURL:     localURL,
		})
		if err != nil {
			// Discovery is a convenience; the VTN still serves without it.
			log.Warn().Err(err).Msg("mDNS registration failed")
		} else {
			defer ad.Shutdown()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("VTN listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildJWTManager selects between the internal symmetric-secret OAuth
// provider and an external JWKS-backed one.
func buildJWTManager(cfg config.Config) (manager *auth.Manager, oauthEnabled bool, err error) {
	if cfg.OAuthJWKSLocation != "" {
		keyType, err := auth.ParseKeyType(cfg.OAuthKeyType)
		if err != nil {
			return nil, false, fmt.Errorf("OAUTH_KEY_TYPE: %w", err)
		}
		log.Info().Str("jwks_location", cfg.OAuthJWKSLocation).Msg("using external OAuth provider")
		return auth.NewManagerWithJWKS(cfg.OAuthJWKSLocation, keyType), false, nil
	}

	secret, present, err := cfg.DecodeSecret()
	if err != nil {
		return nil, false, err
	}
	if !present {
		log.Warn().Msg("generating random secret as OAUTH_BASE64_SECRET env var was not found")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, false, err
		}
	}
	manager, err = auth.NewManagerWithSecret(secret)
	if err != nil {
		return nil, false, err
	}
	return manager, true, nil
}

func mdnsHost(cfg config.Config) string {
	if cfg.Mdns.IPAddress != "" {
		return cfg.Mdns.IPAddress
	}
	if cfg.Mdns.HostName != "" {
		return cfg.Mdns.HostName
	}
	return "localhost"
}
