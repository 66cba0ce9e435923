package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type imageJSON struct {
	File     string `json:"file"`
	Label    string `json:"label,omitempty"`
	Position int    `json:"position"`
}

func newImagesCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "images",
		Short: "List the cached image for each SKU",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			images, err := app.manager.Images().All(cmd.Context())
			if err != nil {
				return fmt.Errorf("load image cache: %w", err)
			}

			if asJSON {
				out := make(map[string]imageJSON, len(images))
				for sku, image := range images {
					out[sku] = imageJSON(image)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			rendered, err := app.imagesRenderer(images)
			if err != nil {
				return fmt.Errorf("render images: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
