package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpalmerr/triggerboard/internal/popup"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if h := msg.Height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil
	case RowsMsg:
		return m.handleRows(msg)
	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	open := m.form.State().Open

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		switch {
		case m.refresh == nil:
			m.notice = "refresh unavailable"
		case m.refresh():
			m.notice = "refresh requested"
		default:
			m.notice = "poll already in flight"
		}
		return m, nil
	case "n":
		m.apply(popup.ActionOpen, "")
		return m, nil
	case "esc":
		m.apply(popup.ActionClose, "")
		return m, nil
	case "t":
		if open {
			next := popup.TriggerTypeAPI
			if m.form.State().TriggerType == popup.TriggerTypeAPI {
				next = popup.TriggerTypeScheduled
			}
			m.apply(popup.ActionTriggerType, next)
		}
		return m, nil
	case "s":
		if open {
			m.apply(popup.ActionScheduleType, nextSchedule(m.form))
		}
		return m, nil
	}

	if open {
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) apply(action popup.Action, value string) {
	if err := m.form.Apply(action, value); err != nil {
		m.notice = err.Error()
	}
}

func (m Model) handleRows(msg RowsMsg) (tea.Model, tea.Cmd) {
	rows := tableRows(m.columns, msg.Events)
	// columns first so SetRows renders with the new widths
	m.table.SetColumns(tableColumns(m.columns, rows))
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
	m.rows = len(rows)
	m.lastUpdate = msg.At
	m.err = nil
	return m, nil
}

// nextSchedule returns the radio after the checked one, wrapping around.
func nextSchedule(f *popup.Form) string {
	opts := f.ScheduleOptions()
	current := f.State().ScheduleType
	for i, v := range opts {
		if v == current {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}
