package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/internal/export"
	"github.com/rxtech-lab/argo-structure/internal/service"
)

// Application states.
const (
	StateIndexSelect = iota
	StateLoading
	StateStructure
)

// Loader analyzes one ticker.
type Loader func(ctx context.Context, ticker string) (*service.Analysis, error)

// Model is the Bubble Tea model of the structure viewer.
type Model struct {
	state     int
	indexList list.Model
	dataTable table.Model
	watchlist []config.Index
	loader    Loader
	selected  config.Index
	analysis  *service.Analysis
	period    service.Period
	err       error
	width     int
	height    int
}

// NewModel creates a Model showing the watchlist.
func NewModel(watchlist []config.Index, loader Loader, period service.Period) Model {
	return Model{
		state:     StateIndexSelect,
		indexList: NewIndexList(watchlist),
		dataTable: NewStructureTable(),
		watchlist: watchlist,
		loader:    loader,
		period:    period,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.state == StateStructure {
				m.state = StateIndexSelect
				m.analysis = nil
				m.err = nil
			}

			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.indexList.SetSize(msg.Width, msg.Height-4)
		m.dataTable.SetWidth(msg.Width)
		m.dataTable.SetHeight(max(msg.Height-12, 5))

		return m, nil

	case AnalysisLoadedMsg:
		m.analysis = msg.Analysis
		m.err = nil
		m.state = StateStructure
		m.dataTable = UpdateStructureRows(m.dataTable, m.records())

		return m, nil

	case AnalysisErrorMsg:
		m.err = msg.Err
		m.state = StateIndexSelect

		return m, nil
	}

	switch m.state {
	case StateIndexSelect:
		return m.updateIndexSelect(msg)
	case StateStructure:
		return m.updateStructure(msg)
	}

	return m, nil
}

func (m Model) updateIndexSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.indexList.SelectedItem().(listItem); ok {
			m.selected = item.index
			m.state = StateLoading

			return m, m.load(item.index.Ticker)
		}
	}

	var cmd tea.Cmd
	m.indexList, cmd = m.indexList.Update(msg)

	return m, cmd
}

func (m Model) updateStructure(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "p":
			m.period = m.period.Next()
			m.dataTable = UpdateStructureRows(m.dataTable, m.records())

			return m, nil
		case "r":
			m.state = StateLoading

			return m, m.load(m.selected.Ticker)
		}
	}

	var cmd tea.Cmd
	m.dataTable, cmd = m.dataTable.Update(msg)

	return m, cmd
}

func (m Model) load(ticker string) tea.Cmd {
	loader := m.loader

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		analysis, err := loader(ctx, ticker)
		if err != nil {
			return AnalysisErrorMsg{Ticker: ticker, Err: err}
		}

		return AnalysisLoadedMsg{Analysis: analysis}
	}
}

// records returns the rows of the current period, newest first.
func (m Model) records() []export.Record {
	if m.analysis == nil {
		return nil
	}

	records := export.NewRecords(m.period.Apply(m.analysis.Result.Rows), export.Options{Round: true})
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateIndexSelect:
		s.WriteString(TitleStyle.Render("Index Structure"))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(m.indexList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to analyze, q to quit"))

	case StateLoading:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Loading %s (%s)...", m.selected.Name, m.selected.Ticker)))
		s.WriteString("\n")

	case StateStructure:
		title := fmt.Sprintf("%s (%s) | Period: %s", m.selected.Name, m.selected.Ticker, m.period)
		if m.analysis.Cached {
			title += " | cached"
		}

		s.WriteString(TitleStyle.Render(title))
		s.WriteString("\n\n")
		s.WriteString(m.summary())
		s.WriteString("\n")
		s.WriteString(m.dataTable.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("p: period | r: reload | Esc: back | q: quit"))
	}

	return s.String()
}

// summary renders the latest values as a row of boxes.
func (m Model) summary() string {
	records := m.records()
	if len(records) == 0 {
		return ""
	}

	latest := records[0]
	plain := lipgloss.NewStyle()

	tg, tgStyle := "-", plain
	if latest.TG.Value {
		tg, tgStyle = "TOP", TopStyle
	}

	bg, bgStyle := "-", plain
	if latest.BG.Value {
		bg, bgStyle = "BOTTOM", BottomStyle
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		SummaryBox("Close", fmt.Sprintf("%.2f", latest.Close), plain),
		SummaryBox("DIF", cellValue(latest.Oscillator), plain),
		SummaryBox("DEA", cellValue(latest.Signal), plain),
		SummaryBox("MACD", cellValue(latest.Histogram), plain),
		SummaryBox("TG", tg, tgStyle),
		SummaryBox("BG", bg, bgStyle),
	)
}
