package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/internal/export"
	"github.com/rxtech-lab/argo-structure/internal/logger"
	"github.com/rxtech-lab/argo-structure/internal/service"
)

// listItem implements list.Item for watchlist entries.
type listItem struct {
	index config.Index
}

func (i listItem) Title() string       { return i.index.Name }
func (i listItem) Description() string { return i.index.Ticker }
func (i listItem) FilterValue() string { return i.index.Name + " " + i.index.Ticker }

// NewIndexList creates the watchlist selector.
func NewIndexList(watchlist []config.Index) list.Model {
	items := make([]list.Item, len(watchlist))
	for i, idx := range watchlist {
		items[i] = listItem{index: idx}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Index"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewStructureTable creates the table of structure rows.
func NewStructureTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 11},
		{Title: "Close", Width: 10},
		{Title: "DIF", Width: 9},
		{Title: "DEA", Width: 9},
		{Title: "MACD", Width: 9},
		{Title: "Cross", Width: 9},
		{Title: "TG", Width: 4},
		{Title: "BG", Width: 4},
		{Title: "Divergence", Width: 12},
		{Title: "Rise", Width: 4},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateStructureRows replaces the table rows.
func UpdateStructureRows(t table.Model, records []export.Record) table.Model {
	rows := make([]table.Row, 0, len(records))

	for _, r := range records {
		rows = append(rows, table.Row{
			r.Date,
			fmt.Sprintf("%.2f", r.Close),
			cellValue(r.Oscillator),
			cellValue(r.Signal),
			cellValue(r.Histogram),
			crossLabel(r),
			flag(r.TG.Value, "▲"),
			flag(r.BG.Value, "▼"),
			divergenceLabel(r),
			flag(r.MainRise, "↑"),
		})
	}

	t.SetRows(rows)
	t.GotoTop()

	return t
}

func cellValue(v *float64) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprintf("%.3f", *v)
}

func flag(set bool, mark string) string {
	if set {
		return mark
	}

	return ""
}

func crossLabel(r export.Record) string {
	switch {
	case r.LowZoneCross:
		return "low-zone"
	case r.SecondaryCross:
		return "secondary"
	case r.BearishCross:
		return "bearish"
	default:
		return ""
	}
}

func divergenceLabel(r export.Record) string {
	switch {
	case r.DirectTopDiv:
		return "top"
	case r.CrossPeakTopDiv:
		return "top (peak)"
	case r.DirectBottomDiv:
		return "bottom"
	case r.CrossPeakBottomDiv:
		return "bottom (peak)"
	default:
		return ""
	}
}

func viewCommand() *cli.Command {
	return &cli.Command{
		Name:  "view",
		Usage: "Browse the structure of the watchlist in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "Initial period: 30, 60, 90 or all",
				Value:   "60",
			},
		},
		Action: viewAction,
	}
}

func viewAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	period, err := service.ParsePeriod(cmd.String("period"))
	if err != nil {
		return err
	}

	// log lines would corrupt the terminal UI
	a, err := buildApp(ctx, cfg, logger.NewNopLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	m := NewModel(cfg.Watchlist, a.analyzer.AnalyzeTicker, period)

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	return err
}
