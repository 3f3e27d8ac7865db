package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/qrscan/internal/capture"
	"github.com/coral-mesh/qrscan/internal/cli/app"
	"github.com/coral-mesh/qrscan/internal/cli/helpers"
	"github.com/coral-mesh/qrscan/internal/constants"
	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/scan/content"
	"github.com/coral-mesh/qrscan/internal/scan/geometry"
)

// decodeRow is one decoded image.
type decodeRow struct {
	File   string                `json:"file"`
	Result string                `json:"result"`
	Type   string                `json:"type,omitempty"`
	Text   string                `json:"text,omitempty"`
	Box    *geometry.BoundingBox `json:"box,omitempty"`
	Fields content.Fields        `json:"fields,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func (decodeRow) Header() []string {
	return []string{"FILE", "RESULT", "TYPE", "X", "Y", "WIDTH", "HEIGHT", "TEXT"}
}

// Cells puts the error message in the TEXT column for failed images.
func (r decodeRow) Cells() []string {
	x, y, w, h := "", "", "", ""
	if r.Box != nil {
		x, y = strconv.Itoa(r.Box.X), strconv.Itoa(r.Box.Y)
		w, h = strconv.Itoa(r.Box.Width), strconv.Itoa(r.Box.Height)
	}
	text := r.Text
	if r.Error != "" {
		text = r.Error
	}
	return []string{r.File, r.Result, r.Type, x, y, w, h, text}
}

func newDecodeCmd() *cobra.Command {
	var (
		format  string
		padding int
	)

	cmd := &cobra.Command{
		Use:   "decode <image>...",
		Short: "Decode QR codes in image files",
		Long: `Decode one QR code per image file and classify its content.

Supported image formats: PNG, JPEG, GIF, BMP, TIFF and WebP.

Examples:
  qrscan decode ticket.png
  qrscan decode frames/*.jpg -o jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			supported := []helpers.OutputFormat{helpers.FormatTable, helpers.FormatJSON, helpers.FormatJSONL, helpers.FormatCSV}
			if err := helpers.ValidateFormat(format, supported); err != nil {
				return err
			}

			env, err := app.Load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("padding") {
				padding = env.Config.Scan.Padding
			}
			dec := app.NewDecoder(env.Config.Decoder)

			rows := make([]decodeRow, 0, len(args))
			for _, path := range args {
				row := decodeRow{File: path}

				img, err := capture.LoadImage(path)
				if err != nil {
					row.Result = scan.OutcomeError.String()
					row.Error = err.Error()
					rows = append(rows, row)
					continue
				}

				res := dec.DecodeImage(img)
				row.Result = res.Outcome.String()
				switch res.Outcome {
				case scan.OutcomeFound:
					record, _ := scan.NewRecord(res, padding)
					row.Type = record.Type.String()
					row.Text = record.Text
					row.Box = &record.Box
					row.Fields = content.Details(record.Type, record.Text)
				case scan.OutcomeError:
					row.Error = res.Err.Error()
				case scan.OutcomeNotFound:
				}
				rows = append(rows, row)
			}

			if err := helpers.WriteRows(cmd.OutOrStdout(), helpers.OutputFormat(format), rows); err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			return nil
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, []helpers.OutputFormat{
		helpers.FormatTable, helpers.FormatJSON, helpers.FormatJSONL, helpers.FormatCSV,
	})
	cmd.Flags().IntVar(&padding, "padding", constants.DefaultPadding, "Pixels added around the located symbol")

	return cmd
}
