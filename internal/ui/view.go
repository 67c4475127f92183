package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasktracker/internal/todo"
	"github.com/nibzard/tasktracker/internal/utils"
)

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.notice != "" {
		writeNotice(&b, m.notice)
		return b.String()
	}
	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.mode)
		return b.String()
	}

	m.writeInputs(&b)
	writeFilters(&b, m.view.Filter)
	stats := m.store.Statistics()
	writeStats(&b, stats)
	m.writeTasks(&b)
	writeClearCompleted(&b, stats.Completed)
	writeFooter(&b, m.mode)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Task Tracker"))
	b.WriteString("\n")
}

func (m *Model) writeInputs(b *strings.Builder) {
	b.WriteString(m.addInput.View())
	b.WriteString("\n")
	if m.mode == modeSearch || m.view.Query != "" {
		b.WriteString(m.searchInput.View())
		if m.view.Query != "" {
			b.WriteString(hintStyle.Render("  (esc to clear)"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeFilters(b *strings.Builder, current todo.Filter) {
	labels := map[todo.Filter]string{
		todo.FilterAll:       "1 All",
		todo.FilterActive:    "2 Active",
		todo.FilterCompleted: "3 Completed",
	}
	parts := make([]string, 0, len(labels))
	for _, f := range todo.Filters() {
		style := filterStyle
		if f == current {
			style = activeFilterStyle
		}
		parts = append(parts, style.Render(labels[f]))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	b.WriteString("\n")
}

func writeStats(b *strings.Builder, st todo.Statistics) {
	card := func(label string, n int) string {
		return cardStyle.Render(label + "\n" + cardValueStyle.Render(fmt.Sprint(n)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", st.Total),
		card("Active", st.Active),
		card("Done", st.Completed),
	))
	b.WriteString("\n\n")
}

func (m *Model) writeTasks(b *strings.Builder) {
	tasks := m.visible()
	if len(tasks) == 0 {
		if m.view.Query != "" {
			fmt.Fprintf(b, "  No tasks found for %q\n\n", m.view.Query)
		} else {
			b.WriteString("  No tasks yet!\n\n")
		}
		return
	}

	session, editing := m.store.Editing()
	titleWidth := m.width - 10
	for i, t := range tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}

		var title string
		switch {
		case editing && session.TaskID == t.ID:
			title = m.editInput.View()
		case t.Completed:
			title = doneStyle.Render(utils.Truncate(t.Title, titleWidth))
		default:
			title = utils.Truncate(t.Title, titleWidth)
		}
		fmt.Fprintf(b, "%s%s %s\n", cursor, check, title)
	}
	b.WriteString("\n")
}

func writeClearCompleted(b *strings.Builder, completed int) {
	if completed == 0 {
		return
	}
	noun := "tasks"
	if completed == 1 {
		noun = "task"
	}
	b.WriteString(hintStyle.Render(fmt.Sprintf("C  clear %d completed %s", completed, noun)))
	b.WriteString("\n\n")
}

func writeNotice(b *strings.Builder, notice string) {
	b.WriteString(modalStyle.Render(notice))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("Press any key to continue"))
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  a, i         Add a task (enter adds, esc leaves)\n")
	b.WriteString("  /            Search tasks (esc clears)\n")
	b.WriteString("  1, 2, 3      Show all, active or completed tasks\n")
	b.WriteString("  tab          Cycle filter\n")
	b.WriteString("  j/k, arrows  Move selection\n")
	b.WriteString("  space, x     Toggle completed\n")
	b.WriteString("  e, enter     Edit title (enter saves, esc cancels)\n")
	b.WriteString("  d            Delete task\n")
	b.WriteString("  C            Clear completed tasks\n")
	b.WriteString("  ?            Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}

func writeFooter(b *strings.Builder, md mode) {
	var hint string
	switch md {
	case modeAdd:
		hint = "enter add | esc done"
	case modeSearch:
		hint = "enter keep search | esc clear"
	case modeEdit:
		hint = "enter save | esc cancel"
	default:
		hint = "? help | a add | / search | q quit"
	}
	b.WriteString(hintStyle.Render(hint))
	b.WriteString("\n")
}
