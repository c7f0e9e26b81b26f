package main

import (
	"github.com/spf13/cobra"

	"galeria/internal/config"
)

func newCoverCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Manage the gallery cover image",
	}

	cmd.AddCommand(
		newCoverShowCmd(cfg, jsonOutput),
		newCoverSetCmd(cfg),
		newCoverClearCmd(cfg),
	)
	return cmd
}

func newCoverShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current cover image",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			covers, err := client.ListCoverImages(cmd.Context())
			if err != nil {
				return err
			}
			if len(covers) == 0 {
				return writePlain("no cover image set\n")
			}

			if *jsonOutput {
				return writeJSON(covers[0])
			}
			return writePlain("%s (%s)\n", covers[0].Title, covers[0].ID)
		},
	}
}

func newCoverSetCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "set <image-id>",
		Short: "Flag an image as the cover, replacing any previous cover",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			covers, err := client.ListCoverImages(cmd.Context())
			if err != nil {
				return err
			}
			for _, cover := range covers {
				if cover.ID == args[0] {
					continue
				}
				if err := client.SetImageCover(cmd.Context(), cover.ID, false); err != nil {
					return err
				}
			}
			if err := client.SetImageCover(cmd.Context(), args[0], true); err != nil {
				return err
			}
			return writePlain("cover set to %s\n", args[0])
		},
	}
}

func newCoverClearCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <image-id>",
		Short: "Remove the cover flag from an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}
			if err := client.SetImageCover(cmd.Context(), args[0], false); err != nil {
				return err
			}
			return writePlain("cover cleared\n")
		},
	}
}
