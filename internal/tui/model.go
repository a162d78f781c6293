// Package tui renders a board in the terminal with bubbletea.
//
// The model is fed by the board's callbacks through [RowsMsg] and [ErrorMsg]
// and hosts the same trigger popup as the web dashboard.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpalmerr/triggerboard"
	"github.com/jpalmerr/triggerboard/internal/popup"
)

const (
	defaultTableHeight = 15
	minColumnWidth     = 8
	maxColumnWidth     = 32
)

// Config holds what a [Model] needs from the surrounding board.
type Config struct {
	// Title is shown above the table.
	Title string

	// Source is the polled URL, shown in the status line.
	Source string

	// Columns are the table columns in display order.
	Columns []triggerboard.Column

	// Refresh requests an immediate poll. Nil disables the r key.
	Refresh func() bool

	// Form backs the trigger popup. A fresh form is used when nil.
	Form *popup.Form
}

// Model is the terminal dashboard.
type Model struct {
	title   string
	source  string
	columns []triggerboard.Column
	refresh func() bool
	form    *popup.Form

	table      table.Model
	rows       int
	lastUpdate time.Time
	err        error
	notice     string
	width      int
}

// New returns a model with an empty table.
func New(cfg Config) Model {
	cols := cfg.Columns
	if len(cols) == 0 {
		cols = triggerboard.DefaultColumns()
	}
	form := cfg.Form
	if form == nil {
		form = popup.NewForm()
	}
	title := cfg.Title
	if title == "" {
		title = "TriggerBoard"
	}

	t := table.New(
		table.WithColumns(tableColumns(cols, nil)),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(colorInfo)).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(colorPrimary))
	t.SetStyles(styles)

	return Model{
		title:   title,
		source:  cfg.Source,
		columns: cols,
		refresh: cfg.Refresh,
		form:    form,
		table:   t,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Rows returns the table rows currently displayed.
func (m Model) Rows() []table.Row {
	return m.table.Rows()
}

// Err returns the error of the last failed poll, cleared by the next success.
func (m Model) Err() error {
	return m.err
}

// Popup returns the current popup state.
func (m Model) Popup() popup.State {
	return m.form.State()
}

// tableColumns sizes each column to fit its header and the widest cell.
func tableColumns(cols []triggerboard.Column, rows []table.Row) []table.Column {
	out := make([]table.Column, len(cols))
	for i, c := range cols {
		w := lipgloss.Width(c.HeaderName)
		for _, r := range rows {
			if cw := lipgloss.Width(r[i]); cw > w {
				w = cw
			}
		}
		w = max(minColumnWidth, min(w, maxColumnWidth))
		out[i] = table.Column{Title: c.HeaderName, Width: w}
	}
	return out
}

func tableRows(cols []triggerboard.Column, events []triggerboard.TriggeredEvent) []table.Row {
	rows := make([]table.Row, len(events))
	for i, e := range events {
		row := make(table.Row, len(cols))
		for j, c := range cols {
			row[j] = e.Field(c.Field)
		}
		rows[i] = row
	}
	return rows
}
