package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/trip"
)

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <location>",
		Short: "List points of interest near a location",
		Long: `Search asks the discovery service for famous historical and scenic places
near the given location and prints them numbered, ready for 'waypoint plan --pick'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.signIn(cmd.Context(), opts); err != nil {
				return err
			}
			places, err := rt.discover(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return outputJSON(opts.stdout, placesJSON(places))
			}
			printPlaces(opts.stdout, places)
			return nil
		},
	}
}

// discover runs a search to completion on the session.
func (r *runtime) discover(ctx context.Context, location string) ([]trip.Place, error) {
	job, err := r.session.Search(ctx, location)
	if err != nil {
		return nil, describe(err)
	}
	if out := r.session.Run(job); out.Err != nil {
		return nil, describe(out.Err)
	}
	return r.session.Candidates(), nil
}

func printPlaces(w io.Writer, places []trip.Place) {
	for i, place := range places {
		fmt.Fprintf(w, "%2d. %s\n", i+1, place.Title)
		if place.Address != "" {
			fmt.Fprintf(w, "    %s\n", place.Address)
		}
		if place.Summary != "" {
			fmt.Fprintf(w, "    %s\n", place.Summary)
		}
		var meta []string
		if place.BestTimeToVisit != "" {
			meta = append(meta, "best: "+place.BestTimeToVisit)
		}
		if place.VisitingHours != "" {
			meta = append(meta, "hours: "+place.VisitingHours)
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(meta, " · "))
		}
	}
}
