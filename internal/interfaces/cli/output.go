package cli

import (
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// renderTable writes headers and rows as an aligned table via tablewriter.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}

// errorColor returns the color used for error output, or a disabled
// (no-op) color when the command's --no-color flag is set.
func errorColor(cmd *cobra.Command) *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if noColor(cmd) {
		c.DisableColor()
	}
	return c
}

// successColor returns the color used for success output, or a disabled
// (no-op) color when the command's --no-color flag is set.
func successColor(cmd *cobra.Command) *color.Color {
	c := color.New(color.FgGreen, color.Bold)
	if noColor(cmd) {
		c.DisableColor()
	}
	return c
}

func noColor(cmd *cobra.Command) bool {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return false
	}
	return cliCtx.NoColor
}
