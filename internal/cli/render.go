package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"flow-chat/backend/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	roleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("135"))
)

const maxTitleWidth = 50

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func renderSessions(w io.Writer, sessions []model.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, headerStyle.Render("No sessions found"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Found %d session(s)", len(sessions))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, columnStyle.Render("ID")+"\t"+columnStyle.Render("Title")+"\t"+columnStyle.Render("Messages")+"\t"+columnStyle.Render("Updated")+"\t")
	for _, s := range sessions {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(s.ID),
			truncate(s.Title, maxTitleWidth),
			countStyle.Render(strconv.Itoa(len(s.Messages))),
			dateStyle.Render(formatTime(s.UpdatedAt)),
		)
	}
	_ = tw.Flush()
}

func renderTranscript(w io.Writer, s model.Session) {
	fmt.Fprintln(w, headerStyle.Render(s.Title))
	fmt.Fprintln(w, idStyle.Render(s.ID)+"  "+dateStyle.Render(formatTime(s.CreatedAt)))
	for _, m := range s.Messages {
		fmt.Fprintln(w)
		label := m.Role
		if m.Model != "" {
			label += " (" + m.Model + ")"
		}
		fmt.Fprintln(w, roleStyle.Render(label)+"  "+dateStyle.Render(formatTime(m.Timestamp)))
		fmt.Fprintln(w, m.Content)
		for _, a := range m.Attachments {
			fmt.Fprintf(w, "  [%s] %s\n", a.Kind, a.URL)
		}
		for _, u := range m.VideoURLs {
			fmt.Fprintf(w, "  [video] %s\n", u)
		}
	}
}

func renderHistory(w io.Writer, entries []*model.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, headerStyle.Render("No history entries found"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Found %d entries", len(entries))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, columnStyle.Render("ID")+"\t"+columnStyle.Render("Type")+"\t"+columnStyle.Render("Session")+"\t"+columnStyle.Render("Prompt")+"\t"+columnStyle.Render("When")+"\t")
	for _, e := range entries {
		prompt := e.Content.Prompt
		if prompt == "" {
			prompt = e.Content.Query
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(e.ID),
			string(e.ChatType),
			e.SessionID,
			truncate(prompt, maxTitleWidth),
			dateStyle.Render(formatTime(e.Timestamp)),
		)
	}
	_ = tw.Flush()
}

func renderStats(w io.Writer, s *model.HistoryStats) {
	fmt.Fprintln(w, headerStyle.Render("History statistics"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label string, n int) {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", label, countStyle.Render(strconv.Itoa(n)))
	}
	row("Total", s.TotalChats)
	row("Text", s.TextChats)
	row("Image", s.ImageChats)
	row("Video", s.VideoChats)
	row("Knowledge", s.KnowledgeSearches)
	row("Sessions", s.TotalSessions)
	if s.FirstChatDate != nil {
		_, _ = fmt.Fprintf(tw, "First\t%s\n", dateStyle.Render(formatTime(*s.FirstChatDate)))
	}
	if s.LastChatDate != nil {
		_, _ = fmt.Fprintf(tw, "Last\t%s\n", dateStyle.Render(formatTime(*s.LastChatDate)))
	}
	_ = tw.Flush()
}
