package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/qrscan/internal/cli/helpers"
	"github.com/coral-mesh/qrscan/internal/dispatch"
	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/scan/content"
)

// classifyResult describes a payload without decoding an image.
type classifyResult struct {
	Text    string            `json:"text"`
	Type    content.Type      `json:"type"`
	Fields  content.Fields    `json:"fields,omitempty"`
	Actions []dispatch.Action `json:"actions"`
}

// actionRow is the table form of one planned action.
type actionRow dispatch.Action

func (actionRow) Header() []string {
	return []string{"ACTION", "LABEL", "TARGET"}
}

func (r actionRow) Cells() []string {
	a := dispatch.Action(r)
	return []string{string(a.Kind), a.Label, a.Target()}
}

func newClassifyCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Classify a QR payload and list its actions",
		Long: `Classify a payload as it would be after decoding, and list the actions
offered for it.

Examples:
  qrscan classify 'WIFI:S:home;T:WPA;P:secret;;'
  qrscan classify 'SMSTO:+15550100:running late' -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, []helpers.OutputFormat{helpers.FormatTable, helpers.FormatJSON}); err != nil {
				return err
			}

			text := strings.Join(args, " ")
			record := scan.DecodedRecord{Text: text, Type: content.Classify(text)}
			result := classifyResult{
				Text:    text,
				Type:    record.Type,
				Fields:  content.Details(record.Type, text),
				Actions: dispatch.Plan(record),
			}

			out := cmd.OutOrStdout()
			if helpers.OutputFormat(format) == helpers.FormatJSON {
				return helpers.WriteJSON(out, result)
			}

			fmt.Fprintf(out, "Type: %s\n", result.Type)
			for _, key := range sortedFieldKeys(result.Fields) {
				fmt.Fprintf(out, "%s: %s\n", key, result.Fields[key])
			}
			fmt.Fprintln(out)

			rows := make([]actionRow, len(result.Actions))
			for i, a := range result.Actions {
				rows[i] = actionRow(a)
			}
			return helpers.WriteRows(out, helpers.FormatTable, rows)
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, []helpers.OutputFormat{helpers.FormatTable, helpers.FormatJSON})
	return cmd
}

func sortedFieldKeys(f content.Fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
