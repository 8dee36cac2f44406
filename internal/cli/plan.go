package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/trip"
)

type planFlags struct {
	location   string
	picks      string
	from       string
	preference string
	exportPath string
}

func newPlanCmd(opts *options) *cobra.Command {
	flags := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build an optimized one-day itinerary",
		Long: `Plan searches --location, picks the numbered places given by --pick (as
listed by 'waypoint search') and asks the planning service for an itinerary.`,
		Example: `  waypoint plan --location Paris --pick 1,3 --from "Gare du Nord" --prefer cheapest
  waypoint plan --location Rome --pick 1,2 --export rome.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.location, "location", "l", "", "Location to search (required)")
	cmd.Flags().StringVarP(&flags.picks, "pick", "p", "", "Comma separated place numbers, e.g. 1,3 (required)")
	cmd.Flags().StringVar(&flags.from, "from", "", "Starting point (default: the searched location)")
	cmd.Flags().StringVar(&flags.preference, "prefer", "", "fastest or cheapest (default: from config)")
	cmd.Flags().StringVarP(&flags.exportPath, "export", "o", "", "Also write the itinerary to a .pdf or .txt file")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("pick")
	return cmd
}

func runPlan(cmd *cobra.Command, opts *options, flags *planFlags) error {
	picks, err := parsePicks(flags.picks)
	if err != nil {
		return err
	}
	rt, err := opts.open()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.signIn(cmd.Context(), opts); err != nil {
		return err
	}

	places, err := rt.discover(cmd.Context(), flags.location)
	if err != nil {
		return err
	}
	for _, n := range picks {
		if n > len(places) {
			return fmt.Errorf("pick %d is out of range: %d places found", n, len(places))
		}
		if _, err := rt.session.Toggle(places[n-1].ID); err != nil {
			return describe(err)
		}
	}
	if from := strings.TrimSpace(flags.from); from != "" {
		rt.session.SetStartLocation(from)
	}
	if flags.preference != "" {
		pref, err := trip.ParsePreference(flags.preference)
		if err != nil {
			return describe(err)
		}
		if err := rt.session.SetPreference(pref); err != nil {
			return describe(err)
		}
	}

	job, err := rt.session.Plan(cmd.Context())
	if err != nil {
		return describe(err)
	}
	if out := rt.session.Run(job); out.Err != nil {
		return describe(out.Err)
	}
	it, _ := rt.session.Itinerary()
	selection := rt.session.Selection()

	if flags.exportPath != "" {
		if err := writeExport(flags.exportPath, it, selection); err != nil {
			return err
		}
		rt.logger.Info().Str("path", flags.exportPath).Msg("exported itinerary")
	}
	if opts.jsonOutput {
		return outputJSON(opts.stdout, itineraryToJSON(it, rt.session.Highlights()))
	}
	return export.WriteText(opts.stdout, it, selection)
}

// parsePicks parses "1,3" into distinct 1-based indexes in input order.
func parsePicks(raw string) ([]int, error) {
	var picks []int
	seen := map[int]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid pick %q: use place numbers from 'waypoint search'", part)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		picks = append(picks, n)
	}
	if len(picks) == 0 {
		return nil, errors.New("no places picked")
	}
	return picks, nil
}

func writeExport(path string, it trip.Itinerary, selection []trip.Place) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		err = export.WritePDF(f, it, selection)
	} else {
		err = export.WriteText(f, it, selection)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
