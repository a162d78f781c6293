package tui

import (
	"fmt"
	"strings"

	"github.com/jpalmerr/triggerboard/internal/popup"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	state := m.form.State()
	if state.Open {
		b.WriteString(popupStyle.Render(renderPopup(state)))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if state.Open {
		b.WriteString(infoStyle.Render("t: trigger type | s: schedule | esc: close | q: quit"))
	} else {
		b.WriteString(infoStyle.Render("r: refresh | n: new trigger | q: quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) statusLine() string {
	var parts []string
	if m.source != "" {
		parts = append(parts, m.source)
	}
	if m.lastUpdate.IsZero() {
		parts = append(parts, "waiting for first poll")
	} else {
		parts = append(parts, fmt.Sprintf("%d rows at %s", m.rows, m.lastUpdate.Format("15:04:05")))
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}

	line := statusStyle.Render(strings.Join(parts, " | "))
	if m.err != nil {
		line += "\n" + errorStyle.Render("fetch failed: "+m.err.Error())
	}
	return line
}

func renderPopup(s popup.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Trigger"))
	b.WriteString("\n")

	b.WriteString("Trigger type: ")
	b.WriteString(choice(popup.TriggerTypeScheduled, s.TriggerType))
	b.WriteString("  ")
	b.WriteString(choice(popup.TriggerTypeAPI, s.TriggerType))
	b.WriteString("\n\n")

	if s.Display[popup.IDScheduledOptions] == popup.DisplayBlock {
		b.WriteString("Schedule: ")
		b.WriteString(choice(popup.ScheduleOneTime, s.ScheduleType))
		b.WriteString("  ")
		b.WriteString(choice(popup.ScheduleInterval, s.ScheduleType))
		b.WriteString("\n")
		switch {
		case s.Display[popup.IDOnetimeOptions] == popup.DisplayBlock:
			b.WriteString(infoStyle.Render("Runs once at the chosen date and time."))
		case s.Display[popup.IDIntervalOptions] == popup.DisplayBlock:
			b.WriteString(infoStyle.Render("Runs every interval from the chosen start."))
		}
	}
	if s.Display[popup.IDAPIOptions] == popup.DisplayBlock {
		b.WriteString(infoStyle.Render("Fired by calling the trigger's API endpoint."))
	}
	return b.String()
}

func choice(value, current string) string {
	if value == current {
		return selectedStyle.Render("(*) " + value)
	}
	return "( ) " + value
}
