package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"galeria/internal/config"
	"galeria/internal/gallery"
)

func newAlbumsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "albums",
		Short: "Manage albums",
	}

	cmd.AddCommand(
		newAlbumsListCmd(cfg, jsonOutput),
		newAlbumsCreateCmd(cfg, jsonOutput),
		newAlbumsRmCmd(cfg),
		newAlbumsRenameCmd(cfg),
	)
	return cmd
}

func newAlbumsListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			albums, err := client.ListAlbums(cmd.Context())
			if err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(albums)
			}

			rows := make([][]string, 0, len(albums))
			for _, album := range albums {
				rows = append(rows, []string{album.ID, album.Name, album.Description, formatTime(album.CreatedAt)})
			}
			return writeTable([]string{"ID", "Name", "Description", "Created"}, rows)
		},
	}
}

func newAlbumsCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			name, err := gallery.ValidateAlbumName(args[0])
			if err != nil {
				return err
			}

			album, err := client.InsertAlbum(cmd.Context(), name, strings.TrimSpace(description))
			if err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(album)
			}
			return writePlain("created %s (%s)\n", album.Name, album.ID)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "album description (markdown)")
	return cmd
}

func newAlbumsRmCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an album; its images become unclassified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			if err := client.ClearAlbumImages(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("unfiling album images: %w", err)
			}
			if err := client.DeleteAlbum(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writePlain("deleted %s\n", args[0])
		},
	}
}

func newAlbumsRenameCmd(cfg *config.Config) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an album",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			name, err := gallery.ValidateAlbumName(args[1])
			if err != nil {
				return err
			}

			if err := client.UpdateAlbum(cmd.Context(), args[0], name, description); err != nil {
				return err
			}
			return writePlain("renamed %s\n", args[0])
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "replace the album description")
	return cmd
}
