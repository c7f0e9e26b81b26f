package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"galeria/internal/config"
	"galeria/internal/gallery"
	"galeria/internal/media"
	"galeria/internal/prefs"
	"galeria/internal/web"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gallery web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}

			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			logger := slog.Default().With("component", "server")

			// The backend may come up later; a failed ping is worth a
			// warning, not a refusal to serve.
			if err := client.Ping(cmd.Context()); err != nil {
				logger.Warn("backend unreachable at startup", "error", err)
			}

			addr, err := web.ListenAddr(cfg.ListenAddr)
			if err != nil {
				return err
			}

			p, err := prefs.Load(cfg.PrefsPath)
			if err != nil {
				return fmt.Errorf("loading preferences: %w", err)
			}

			cache, err := media.NewVariantCache(cfg.MediaCacheDir)
			if err != nil {
				return fmt.Errorf("opening media cache: %w", err)
			}

			if cfg.CDNCloudName == "" || cfg.CDNUploadPreset == "" {
				logger.Warn("cdn upload not configured, admin uploads will fail",
					"cloud_name_set", cfg.CDNCloudName != "",
					"upload_preset_set", cfg.CDNUploadPreset != "")
			}
			uploader := media.NewUploader(cfg.CDNCloudName, cfg.CDNUploadPreset, cfg.CDNUploadFolder)

			browse := gallery.NewStore(client, gallery.StoreOptions{
				PageSize: cfg.PageSize,
				Logger:   logger.With("store", "browse"),
			})
			discovery := gallery.NewStore(client, gallery.StoreOptions{
				ShuffleOnLoad: cfg.ShuffleHome,
				Logger:        logger.With("store", "discovery"),
			})

			srv, err := web.New(addr, web.Options{
				Browse:    browse,
				Discovery: discovery,
				Auth:      client,
				Uploader:  uploader,
				Cache:     cache,
				Prefs:     p,
				Lockout:   prefs.NewLockout(p),
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe()
		},
	}
}
