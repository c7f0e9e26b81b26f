package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"galeria/internal/config"
	"galeria/internal/gallery"
	"galeria/internal/media"
)

func newImagesCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Manage gallery images",
	}

	cmd.AddCommand(
		newImagesListCmd(cfg, jsonOutput),
		newImagesUploadCmd(cfg, jsonOutput),
		newImagesRmCmd(cfg),
		newImagesRetitleCmd(cfg),
		newImagesMoveCmd(cfg),
	)
	return cmd
}

func newImagesListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		album string
		page  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List images",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			opts := gallery.ListOptions{}
			if album != "" {
				opts.AlbumID = &album
			}
			if page > 0 {
				opts.Page = page
				opts.PageSize = cfg.PageSize
			}

			result, err := client.ListImages(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(result)
			}

			rows := make([][]string, 0, len(result.Items))
			for _, img := range result.Items {
				albumID := ""
				if img.AlbumID != nil {
					albumID = *img.AlbumID
				}
				cover := ""
				if img.IsCover {
					cover = "*"
				}
				rows = append(rows, []string{img.ID, img.Title, albumID, cover, formatTime(img.UploadedAt)})
			}
			if err := writeTable([]string{"ID", "Title", "Album", "Cover", "Uploaded"}, rows); err != nil {
				return err
			}
			return writePlain("%d of %d images\n", len(result.Items), result.TotalCount)
		},
	}

	cmd.Flags().StringVar(&album, "album", "", "filter by album id")
	cmd.Flags().IntVar(&page, "page", 0, "page number (0 lists everything)")
	return cmd
}

func newImagesUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		title string
		album string
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and record it in the gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}
			if cfg.CDNCloudName == "" || cfg.CDNUploadPreset == "" {
				return fmt.Errorf("cdn_cloud_name and cdn_upload_preset must be configured for uploads")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			filename := filepath.Base(args[0])
			uploader := media.NewUploader(cfg.CDNCloudName, cfg.CDNUploadPreset, cfg.CDNUploadFolder)
			result, err := uploader.Upload(cmd.Context(), filename, f)
			if err != nil {
				return fmt.Errorf("uploading media: %w", err)
			}

			recordTitle := strings.TrimSpace(title)
			if recordTitle == "" {
				recordTitle = filename
			}
			var albumID *string
			if album != "" {
				albumID = &album
			}

			img, err := client.InsertImage(cmd.Context(), recordTitle, result.URL, albumID)
			if err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(img)
			}
			return writePlain("uploaded %s (%s)\n", img.Title, img.ID)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "image title (defaults to the file name)")
	cmd.Flags().StringVar(&album, "album", "", "album id to file the image under")
	return cmd
}

func newImagesRmCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an image record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}
			if err := client.DeleteImage(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writePlain("deleted %s\n", args[0])
		},
	}
}

func newImagesRetitleCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "retitle <id> <title>",
		Short: "Change an image title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}
			title := strings.TrimSpace(args[1])
			if title == "" {
				return fmt.Errorf("title must not be empty")
			}
			if err := client.UpdateImageTitle(cmd.Context(), args[0], title); err != nil {
				return err
			}
			return writePlain("retitled %s\n", args[0])
		},
	}
}

func newImagesMoveCmd(cfg *config.Config) *cobra.Command {
	var album string

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move an image into an album, or to unclassified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}
			var albumID *string
			if album != "" {
				albumID = &album
			}
			if err := client.UpdateImageAlbum(cmd.Context(), args[0], albumID); err != nil {
				return err
			}
			if albumID == nil {
				return writePlain("moved %s to unclassified\n", args[0])
			}
			return writePlain("moved %s to album %s\n", args[0], album)
		},
	}

	cmd.Flags().StringVar(&album, "album", "", "target album id (empty moves to unclassified)")
	return cmd
}
