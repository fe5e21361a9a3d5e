package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/goatkit/kamdesk/internal/models"
)

type theme struct {
	heading lipgloss.Style
	label   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	faint   lipgloss.Style
	success lipgloss.Style
	staff   lipgloss.Style
	user    lipgloss.Style
	badges  map[models.Status]lipgloss.Style
}

func newTheme(r *lipgloss.Renderer) theme {
	badge := func(color string) lipgloss.Style {
		return r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: color, Dark: color})
	}
	return theme{
		heading: r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("245")),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		faint:   r.NewStyle().Faint(true),
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		staff:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		user:    r.NewStyle().Bold(true),
		badges: map[models.Status]lipgloss.Style{
			models.StatusOpen:       badge("#2563eb"),
			models.StatusInProgress: badge("#d97706"),
			models.StatusResolved:   badge("#16a34a"),
			models.StatusClosed:     badge("#6b7280"),
		},
	}
}

// status renders a status badge; unknown statuses print plain.
func (t theme) status(s models.Status) string {
	if st, ok := t.badges[s]; ok {
		return st.Render(string(s))
	}
	return string(s)
}
