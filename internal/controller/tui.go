package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "vuec.dev/pkg/vuec/internal/model"
)

// Lines reserved around the viewport for the title and help line.
const pagerChrome = 3

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display. Output that
// fits the terminal is printed directly; longer output opens a pager.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplaySources shows the component table.
func (p *TUI) DisplaySources(ctx context.Context, rows []SourceRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(rows) == 0 {
		return p.show("vuec - components", "  No components found\n")
	}

	return p.show("vuec - components", renderSourcesTable(rows))
}

// DisplayReports shows the outcome of a batch transform.
func (p *TUI) DisplayReports(ctx context.Context, reports []m.FileReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(renderReportsTable(reports))

	for _, report := range reports {
		if report.Err != nil {
			fmt.Fprintf(&b, "\n%s\n%s\n", titleStyle.Render(string(report.Source.ShortPath)), errorStyle.Render(report.Err.Error()))
		}
	}

	return p.show("vuec - transform", b.String())
}

// DisplayBuild shows the bundle outputs.
func (p *TUI) DisplayBuild(ctx context.Context, summary BuildSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(renderBuildTable(summary.Metafile))

	for _, warning := range summary.Warnings {
		b.WriteString(warningStyle.Render("warning: "+warning) + "\n")
	}

	return p.show("vuec - build", b.String())
}

// DisplayServe announces the dev server.
func (p *TUI) DisplayServe(ctx context.Context, host, port string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if host == "" {
		host = "localhost"
	}

	_, _ = fmt.Fprintf(p.output, "%s\n  %s\n  %s\n",
		titleStyle.Render("vuec - dev server"),
		fmt.Sprintf("http://%s:%s", host, port),
		helpStyle.Render("Ctrl+C to stop"))
}

func (p *TUI) show(title, content string) error {
	width, height := p.size()

	if height == 0 || strings.Count(content, "\n")+pagerChrome <= height {
		_, err := fmt.Fprintf(p.output, "%s\n\n%s", titleStyle.Render(title), content)
		return err
	}

	program := tea.NewProgram(newPagerModel(title, content, width, height),
		tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func (p *TUI) size() (int, int) {
	f, ok := p.output.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}

	return width, height
}

// pagerModel scrolls long output in a viewport.
type pagerModel struct {
	title    string
	viewport viewport.Model
}

func newPagerModel(title, content string, width, height int) pagerModel {
	vp := viewport.New(width, max(height-pagerChrome, 1))
	vp.SetContent(content)

	return pagerModel{title: title, viewport: vp}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.viewport.Width = msg.Width
		pm.viewport.Height = max(msg.Height-pagerChrome, 1)

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return pm, tea.Quit
		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil
		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}
	}

	var cmd tea.Cmd
	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	help := fmt.Sprintf("%3.f%% | ↑/k ↓/j scroll | g/G top/bottom | q quit", pm.viewport.ScrollPercent()*100)

	return titleStyle.Render(pm.title) + "\n" + pm.viewport.View() + "\n" + helpStyle.Render(help)
}
