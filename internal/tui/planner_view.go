package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/waypoint/internal/trip"
)

type plannerFocus int

const (
	focusQuery plannerFocus = iota
	focusStart
	focusCandidates
	focusCount
)

func (f plannerFocus) next() plannerFocus { return (f + 1) % focusCount }
func (f plannerFocus) prev() plannerFocus { return (f + focusCount - 1) % focusCount }

// plannerView renders the session; it keeps only widget state of its own.
type plannerView struct {
	session *trip.Session
	query   textinput.Model
	start   textinput.Model
	focus   plannerFocus
	cursor  int
	width   int
}

func newPlannerView(session *trip.Session) *plannerView {
	v := &plannerView{
		session: session,
		query:   newTextInput("Enter a city or region, e.g. Paris"),
		start:   newTextInput("Where does the day start?"),
	}
	v.start.SetValue(session.StartLocation())
	v.focusOn(focusQuery)
	return v
}

func (v *plannerView) setWidth(width int) {
	v.width = width
	w := max(20, min(60, width-24))
	v.query.Width = w
	v.start.Width = w
}

func (v *plannerView) focusOn(f plannerFocus) {
	v.focus = f
	v.query.Blur()
	v.start.Blur()
	switch f {
	case focusQuery:
		_ = v.query.Focus()
	case focusStart:
		_ = v.start.Focus()
	}
}

func (v *plannerView) handleInput(msg tea.KeyMsg) {
	switch v.focus {
	case focusQuery:
		v.query, _ = v.query.Update(msg)
	case focusStart:
		before := v.start.Value()
		v.start, _ = v.start.Update(msg)
		if v.start.Value() != before {
			v.session.SetStartLocation(v.start.Value())
		}
	}
}

func (v *plannerView) moveCursor(delta int) {
	n := len(v.session.Candidates())
	if n == 0 {
		v.cursor = 0
		return
	}
	v.cursor = min(max(v.cursor+delta, 0), n-1)
}

func (v *plannerView) toggleCurrent() {
	candidates := v.session.Candidates()
	if v.cursor < 0 || v.cursor >= len(candidates) {
		return
	}
	_, _ = v.session.Toggle(candidates[v.cursor].ID)
}

func (v *plannerView) afterDiscovery() {
	v.cursor = 0
	v.start.SetValue(v.session.StartLocation())
	v.focusOn(focusCandidates)
}

func (v *plannerView) view(spin string) string {
	sections := []string{
		v.renderInputs(),
		v.renderStatus(spin),
	}
	if candidates := v.renderCandidates(); candidates != "" {
		sections = append(sections, candidates)
	}
	if itinerary := v.renderItinerary(); itinerary != "" {
		sections = append(sections, itinerary)
	}
	return strings.Join(sections, "\n\n")
}

func (v *plannerView) label(text string, f plannerFocus) string {
	if v.focus == f {
		return cursorStyle.Render("› ") + labelStyle.Render(text)
	}
	return "  " + labelStyle.Render(text)
}

func (v *plannerView) renderInputs() string {
	pref := v.session.Preference()
	return lipgloss.JoinVertical(lipgloss.Left,
		v.label("Where to?", focusQuery),
		"  "+v.query.View(),
		v.label("Starting point", focusStart),
		"  "+v.start.View(),
		"  "+dimStyle.Render("Route: ")+accentStyle.Render(string(pref))+dimStyle.Render(" (ctrl+p to switch)"),
	)
}

func (v *plannerView) renderStatus(spin string) string {
	switch {
	case v.session.DiscoveryStatus() == trip.StatusPending:
		return spin + " " + dimStyle.Render("Finding amazing places for you...")
	case v.session.PlanningStatus() == trip.StatusPending:
		return spin + " " + dimStyle.Render("Planning your day...")
	}
	if problem := v.session.Problem(); problem != nil {
		return problemStyle.Render(trip.Message(problem))
	}
	return dimStyle.Render(fmt.Sprintf("%d of %d places picked", len(v.session.Selection()), len(v.session.Candidates())))
}

func (v *plannerView) renderCandidates() string {
	candidates := v.session.Candidates()
	if len(candidates) == 0 {
		return ""
	}
	lines := []string{v.label(fmt.Sprintf("Places near %s", v.session.Query()), focusCandidates)}
	for i, place := range candidates {
		pointer := "  "
		if v.focus == focusCandidates && i == v.cursor {
			pointer = cursorStyle.Render("> ")
		}
		box := "[ ]"
		title := place.Title
		if v.session.Selected(place.ID) {
			box = selectedStyle.Render("[x]")
			title = selectedStyle.Render(title)
		}
		line := fmt.Sprintf("%s%s %s", pointer, box, title)
		if place.BestTimeToVisit != "" {
			line += dimStyle.Render("  · best: " + place.BestTimeToVisit)
		}
		lines = append(lines, line)
		if place.Summary != "" {
			lines = append(lines, "      "+detailStyle.Render(place.Summary))
		}
	}
	return strings.Join(lines, "\n")
}

func (v *plannerView) renderItinerary() string {
	it, ok := v.session.Itinerary()
	if !ok {
		return ""
	}
	highlights := v.session.Highlights()
	lines := []string{labelStyle.Render(fmt.Sprintf("Your day from %s (%s)", it.Request.StartLocation, it.Request.Preference))}
	for i, leg := range it.Legs {
		row := fmt.Sprintf("%-13s %-10s %s", leg.TimeSlot, leg.Type, leg.Activity)
		if i < len(highlights) && highlights[i] {
			row = highlightStyle.Render("★ " + row)
		} else {
			row = legStyle.Render("  " + row)
		}
		lines = append(lines, row)
		if leg.Location != "" {
			lines = append(lines, "    "+detailStyle.Render(leg.Location))
		}
		if leg.Details != "" {
			lines = append(lines, "    "+dimStyle.Render(leg.Details))
		}
	}
	return strings.Join(lines, "\n")
}
