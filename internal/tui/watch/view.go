package watch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/repolock/repolock/internal/lock"
	"github.com/repolock/repolock/internal/style"
)

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Bold.Render("repolock watch"))
	sb.WriteString(style.Dim.Render("  " + m.dir))
	sb.WriteString("\n\n")

	if m.snap.Err != nil {
		sb.WriteString(style.Warn.Render(fmt.Sprintf("  error: %v", m.snap.Err)))
		sb.WriteString("\n")
	} else {
		sb.WriteString(renderSnapshot(m.snap))
	}

	sb.WriteString("\n")
	sb.WriteString(style.Dim.Render(fmt.Sprintf("  as of %s", m.snap.Taken.Format("15:04:05"))))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func renderSnapshot(snap Snapshot) string {
	var sb strings.Builder

	mode := snap.Mode.String()
	if snap.Mode == lock.ModeNone {
		mode = "free"
	}
	sb.WriteString("  state: ")
	sb.WriteString(style.ForMode(snap.Mode.String()).Render(mode))
	sb.WriteString("\n\n")

	if len(snap.Holders) > 0 {
		t := style.NewTable("HOST", "PID", "MODE")
		for _, h := range snap.Holders {
			t.AddRow(h.Host, strconv.Itoa(h.Pid), snap.Mode.String())
		}
		sb.WriteString(t.Render())
	}

	if len(snap.Guards) > 0 {
		sb.WriteString("\n")
		t := style.NewTable("GUARD", "HOLDER", "AGE")
		for _, g := range snap.Guards {
			holder := "?"
			if g.HolderKnown {
				holder = g.Holder.Filename()
			}
			t.AddRow(g.Kind, holder, g.Age(snap.Taken).Round(time.Second).String())
		}
		sb.WriteString(t.Render())
	}

	return sb.String()
}
