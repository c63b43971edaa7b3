package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scoreflow/internal/api"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var scoreID string
	var fileType string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Upload a score file and print the processing result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read score file: %w", err)
			}

			if scoreID == "" {
				scoreID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			if fileType == "" {
				fileType = strings.TrimPrefix(filepath.Ext(path), ".")
			}
			if fileType == "" {
				return fmt.Errorf("cannot infer file type from %q; pass --type", path)
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.Process(cmd.Context(), api.ProcessRequest{
				ScoreID:  scoreID,
				FileData: base64.StdEncoding.EncodeToString(data),
				FileType: fileType,
				FileName: filepath.Base(path),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session:   %s\n", resp.SessionID)
			fmt.Fprintf(out, "Title:     %s\n", resp.Metadata.Title)
			fmt.Fprintf(out, "Composer:  %s\n", resp.Metadata.Composer)
			fmt.Fprintf(out, "Key/Time:  %s, %s\n", resp.Metadata.KeySignature, resp.Metadata.TimeSignature)
			fmt.Fprintf(out, "Measures:  %d in %d groups\n", resp.Metadata.MeasureCount, len(resp.MeasureGroups))

			if outputDir == "" {
				return nil
			}
			return savePreviews(out, outputDir, resp)
		},
	}

	cmd.Flags().StringVar(&scoreID, "score-id", "", "Score identifier (default: file name without extension)")
	cmd.Flags().StringVar(&fileType, "type", "", "Declared file type (default: file extension)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory to save the notation document and preview images")
	return cmd
}

// savePreviews writes the notation document and the decoded preview images
// next to each other in dir.
func savePreviews(out io.Writer, dir string, resp *api.ProcessResponse) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	docPath := filepath.Join(dir, resp.ScoreID+".musicxml")
	if err := os.WriteFile(docPath, []byte(resp.NotationDocument), 0o644); err != nil {
		return fmt.Errorf("write notation document: %w", err)
	}

	for _, group := range resp.MeasureGroups {
		encoded := strings.TrimPrefix(group.ImageData, "data:image/png;base64,")
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("decode preview for measures %d-%d: %w", group.StartMeasure, group.EndMeasure, err)
		}
		name := fmt.Sprintf("%s-measures-%d-%d.png", resp.ScoreID, group.StartMeasure, group.EndMeasure)
		if err := os.WriteFile(filepath.Join(dir, name), decoded, 0o644); err != nil {
			return fmt.Errorf("write preview image: %w", err)
		}
	}

	fmt.Fprintf(out, "Saved:     %s (%d previews)\n", dir, len(resp.MeasureGroups))
	return nil
}
