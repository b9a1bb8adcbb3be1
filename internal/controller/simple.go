package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "vuec.dev/pkg/vuec/internal/model"
)

// SimpleUI implements UI using plain tables on the command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplaySources prints the component table.
func (s *SimpleUI) DisplaySources(ctx context.Context, rows []SourceRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderSourcesTable(rows))

	return nil
}

// DisplayReports prints the outcome of a batch transform.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.FileReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderReportsTable(reports))

	for _, report := range reports {
		if report.Err != nil {
			s.printf("\n%s:\n%v\n", report.Source.ShortPath, report.Err)
		}
	}

	return nil
}

// DisplayBuild prints the bundle outputs.
func (s *SimpleUI) DisplayBuild(ctx context.Context, summary BuildSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderBuildTable(summary.Metafile))

	for _, warning := range summary.Warnings {
		s.printf("warning: %s\n", warning)
	}

	return nil
}

// DisplayServe announces the dev server.
func (s *SimpleUI) DisplayServe(ctx context.Context, host, port string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if host == "" {
		host = "localhost"
	}

	s.printf("Serving on http://%s:%s (Ctrl+C to stop)\n", host, port)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderSourcesTable(rows []SourceRow) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Scope ID", "Scoped", "Eligible"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	eligible := 0

	for _, row := range rows {
		table.Append([]string{string(row.Path), row.ScopeID, yesNo(row.Scoped), yesNo(row.Eligible)})

		if row.Eligible {
			eligible++
		}
	}

	table.SetFooter([]string{fmt.Sprintf("Total Files %d", len(rows)), "", "", fmt.Sprintf("%d", eligible)})
	table.Render()

	return tableBuffer.String()
}

func renderReportsTable(reports []m.FileReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Status", "Scope ID", "CSS", "Warnings"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	counts := make(map[m.FileStatus]int)

	for _, report := range reports {
		counts[report.Status]++

		table.Append([]string{
			string(report.Source.ShortPath),
			report.Status.String(),
			report.ScopeID,
			fmt.Sprintf("%d", report.CSSBytes),
			fmt.Sprintf("%d", len(report.Warnings)),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(reports)),
		statusSummary(counts),
		"", "", "",
	})
	table.Render()

	return tableBuffer.String()
}

func renderBuildTable(metafile m.Metafile) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Output", "Entry Point", "Bytes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	outputs := make([]string, 0, len(metafile.Outputs))
	for output := range metafile.Outputs {
		outputs = append(outputs, output)
	}

	sort.Strings(outputs)

	total := 0

	for _, output := range outputs {
		info := metafile.Outputs[output]
		total += info.Bytes

		table.Append([]string{output, info.EntryPoint, fmt.Sprintf("%d", info.Bytes)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Outputs %d", len(outputs)),
		fmt.Sprintf("Inputs %d", len(metafile.Inputs)),
		fmt.Sprintf("%d", total),
	})
	table.Render()

	return tableBuffer.String()
}

func statusSummary(counts map[m.FileStatus]int) string {
	parts := make([]string, 0, len(counts))

	for _, status := range []m.FileStatus{m.Transformed, m.Cached, m.Skipped, m.Failed} {
		if counts[status] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[status], status))
		}
	}

	return strings.Join(parts, ", ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}

	return "no"
}
