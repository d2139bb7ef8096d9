package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/preview"
	"github.com/mhpenta/imagestudio/session"
)

var modeLabels = map[session.Mode]string{
	session.ModeGenerate: "Generate",
	session.ModeEdit:     "Edit",
	session.ModeIdeate:   "Ideate",
	session.ModeGallery:  "Gallery",
}

var sourceLabels = map[preview.Source]string{
	preview.SourceResults: "Result",
	preview.SourceGallery: "Gallery",
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

func (m *Model) render() string {
	sections := []string{m.renderHeader()}

	if m.state.Preview.IsOpen() {
		sections = append(sections, m.renderPreview())
	} else {
		sections = append(sections, m.renderBody())
	}

	if status := m.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, HelpStyle.Render(m.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	tabs := []string{TitleStyle.Render("Image Studio")}
	for i, mode := range session.Modes {
		label := fmt.Sprintf("%d %s", i+1, modeLabels[mode])
		if mode == session.ModeGallery {
			label = fmt.Sprintf("%s (%d)", label, len(m.state.Gallery))
		}
		if mode == m.state.Mode {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderBody() string {
	var b strings.Builder

	if m.hasInput() {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if img := m.state.CurrentImage(); img != nil {
			b.WriteString(LabelStyle.Render("Image: "))
			b.WriteString(ValueStyle.Render(fmt.Sprintf("%s, %s", img.MIMEType, formatSize(len(img.Data)))))
			b.WriteString("\n")
		}
		if m.pathOpen {
			b.WriteString(LabelStyle.Render("Load image: "))
			b.WriteString(m.pathInput.View())
			b.WriteString("\n")
		}
	}

	if m.state.Mode == session.ModeGenerate {
		b.WriteString(m.renderOptions())
		b.WriteString("\n")
	} else if m.state.Mode == session.ModeEdit {
		b.WriteString(m.renderOption("Faceless", onOff(m.state.Options.Faceless)))
		b.WriteString("\n")
	}

	b.WriteString(m.renderList())
	return PanelStyle.Render(b.String())
}

func (m *Model) renderOptions() string {
	opts := m.state.Options
	model := string(opts.Model)
	if o, ok := imagestudio.LookupModelOption(opts.Model); ok {
		model = o.Label
	}
	parts := []string{
		m.renderOption("Style", opts.Style.Label),
		m.renderOption("Aspect", string(opts.AspectRatio)),
		m.renderOption("Images", fmt.Sprint(opts.NumberOfImages)),
		m.renderOption("Faceless", onOff(opts.Faceless)),
		m.renderOption("Model", model),
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderOption(label, value string) string {
	return LabelStyle.Render(label+": ") + ValueStyle.Render(value)
}

func (m *Model) renderList() string {
	if m.state.Busy {
		return WarningStyle.Render(spinnerFrames[m.frame] + " " + busyText(m.state.Mode))
	}

	var rows []string
	switch m.state.Mode {
	case session.ModeIdeate:
		rows = append(rows, m.state.Suggestions...)
	default:
		for _, img := range m.state.List(m.listSource()) {
			rows = append(rows, img.Alt)
		}
	}

	if len(rows) == 0 {
		return LabelStyle.Render(emptyText(m.state.Mode))
	}

	var b strings.Builder
	for i, row := range rows {
		line := fmt.Sprintf("%2d. %s", i+1, truncate(row, m.rowWidth()))
		if m.focus == FocusList && i == m.cursor {
			b.WriteString(SelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderPreview() string {
	img, cur, ok := m.state.PreviewImage()
	if !ok {
		return ""
	}
	list := m.state.List(cur.Source)
	info := previewInfo(img)

	var b strings.Builder
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%s image %d of %d", sourceLabels[cur.Source], cur.Index+1, len(list))))
	b.WriteString("\n\n")
	b.WriteString(img.Alt)
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render(info))
	b.WriteString("\n\n")

	nav := []string{}
	if m.state.Preview.HasPrev() {
		nav = append(nav, "← prev")
	}
	if m.state.Preview.HasNext(len(list)) {
		nav = append(nav, "→ next")
	}
	nav = append(nav, "esc close")

	actions := preview.ActionsFor(cur.Source)
	act := []string{}
	if actions.Download {
		act = append(act, "d download")
	}
	if actions.Variation {
		act = append(act, "v variation")
	}
	if actions.Regenerate {
		act = append(act, "r regenerate")
	}
	if actions.Delete {
		act = append(act, "x delete")
	}
	b.WriteString(HelpStyle.Render(strings.Join(nav, " · ")))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(strings.Join(act, " · ")))

	if m.confirmDelete {
		b.WriteString("\n\n")
		b.WriteString(ErrorStyle.Render("Delete this image from the gallery? (y/n)"))
	}
	return ModalStyle.Render(b.String())
}

func (m *Model) renderStatus() string {
	if m.state.Err != nil {
		return ErrorStyle.Render("Error: " + m.state.Err.Error() + " (esc to dismiss)")
	}
	if m.state.Notice != "" {
		return NoticeStyle.Render(m.state.Notice)
	}
	return ""
}

func (m *Model) helpLine() string {
	switch {
	case m.state.Preview.IsOpen():
		return "ctrl+c quit"
	case m.pathOpen:
		return "enter load · esc cancel"
	case m.state.Mode == session.ModeGallery:
		return "↑/↓ select · enter preview · 1-4/tab mode · q quit"
	case m.focus == FocusList && m.state.Mode == session.ModeIdeate:
		return "↑/↓ select · enter use · c copy · esc back to input · 1-4/tab mode"
	case m.focus == FocusList:
		return "↑/↓ select · enter preview · esc back to input · 1-4/tab mode"
	case m.state.Mode == session.ModeGenerate:
		return "enter generate · ctrl+s style · ctrl+r aspect · ctrl+n count · ctrl+f faceless · ctrl+g model · ctrl+o/ctrl+v image · tab mode"
	case m.state.Mode == session.ModeEdit:
		return "enter edit · ctrl+o/ctrl+v image · ctrl+x clear · ctrl+f faceless · tab mode"
	default:
		return "enter suggest · ctrl+o/ctrl+v image · ctrl+x clear · ↓ suggestions · tab mode"
	}
}

func (m *Model) rowWidth() int {
	if m.width > 12 {
		return m.width - 12
	}
	return 100
}

func busyText(mode session.Mode) string {
	switch mode {
	case session.ModeEdit:
		return "Editing image..."
	case session.ModeIdeate:
		return "Thinking up prompts..."
	default:
		return "Generating images..."
	}
}

func emptyText(mode session.Mode) string {
	switch mode {
	case session.ModeIdeate:
		return "No suggestions yet."
	case session.ModeGallery:
		return "The gallery is empty."
	default:
		return "No images yet."
	}
}

func previewInfo(img imagestudio.Image) string {
	if !strings.HasPrefix(img.Src, "data:") {
		return img.Src
	}
	in, err := imagestudio.ParseDataURI(img.Src)
	if err != nil {
		return "unreadable image data"
	}
	return fmt.Sprintf("%s, %s", in.MIMEType, formatSize(len(in.Data)))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
