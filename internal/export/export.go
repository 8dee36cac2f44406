// Package export renders an itinerary for sharing, as plain text or PDF.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/kingrea/waypoint/internal/trip"
)

// HighlightMarker prefixes legs that visit a selected place.
const HighlightMarker = "*"

// FileName is the default export name for an itinerary produced at now.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("itinerary-%s.%s", now.Format("20060102-150405"), strings.TrimPrefix(ext, "."))
}

func heading(it trip.Itinerary) string {
	return fmt.Sprintf("Itinerary from %s (%s)", it.Request.StartLocation, it.Request.Preference)
}

func stops(it trip.Itinerary) string {
	titles := make([]string, 0, len(it.Request.SelectedPlaces))
	for _, place := range it.Request.SelectedPlaces {
		titles = append(titles, place.Title)
	}
	return strings.Join(titles, ", ")
}

// WriteText writes one line per leg. Legs that visit one of the selected
// places are prefixed with HighlightMarker.
func WriteText(w io.Writer, it trip.Itinerary, selection []trip.Place) error {
	var b strings.Builder
	fmt.Fprintln(&b, heading(it))
	if s := stops(it); s != "" {
		fmt.Fprintf(&b, "Stops: %s\n", s)
	}
	b.WriteString("\n")
	highlights := trip.Highlights(it.Legs, selection)
	for i, leg := range it.Legs {
		marker := " "
		if highlights[i] {
			marker = HighlightMarker
		}
		fmt.Fprintf(&b, "%s %-13s [%s] %s\n", marker, leg.TimeSlot, leg.Type, leg.Activity)
		if leg.Location != "" {
			fmt.Fprintf(&b, "  %-13s at %s\n", "", leg.Location)
		}
		if leg.Details != "" {
			fmt.Fprintf(&b, "  %-13s %s\n", "", leg.Details)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WritePDF renders the itinerary as an A4 document. Highlighted legs get a
// shaded row.
func WritePDF(w io.Writer, it trip.Itinerary, selection []trip.Place) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(heading(it), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 8, tr(heading(it)), "", "L", false)
	if s := stops(it); s != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr("Stops: "+s), "", "L", false)
	}
	pdf.Ln(4)

	highlights := trip.Highlights(it.Legs, selection)
	for i, leg := range it.Legs {
		fill := highlights[i]
		if fill {
			pdf.SetFillColor(224, 231, 255)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, tr(leg.TimeSlot), "", 0, "L", fill, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s  (%s)", leg.Activity, leg.Type)), "", 1, "L", fill, 0, "")
		pdf.SetFont("Arial", "", 9)
		if leg.Location != "" {
			pdf.SetX(50)
			pdf.MultiCell(0, 5, tr(leg.Location), "", "L", fill)
		}
		if leg.Details != "" {
			pdf.SetX(50)
			pdf.MultiCell(0, 5, tr(leg.Details), "", "L", fill)
		}
		pdf.Ln(2)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("export: render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}
