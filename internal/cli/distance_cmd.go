package cli

import (
	"fmt"
	"strconv"
	"strings"
	"trip-planner-service/internal/domain"

	"github.com/spf13/cobra"
)

func newDistanceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "distance LAT,LON LAT,LON",
		Short: "Query the configured provider for one origin/destination pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := parseLatLon(args[0])
			if err != nil {
				return err
			}
			dest, err := parseLatLon(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := app.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := st.Distance.GetDistance(ctx, origin, dest)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "distance: %s\nduration: %s\n",
				domain.FormatDistance(res.DistanceMeters), domain.FormatDuration(res.DurationSeconds))
			return nil
		},
	}
}

// parseLatLon reads "lat,lon".
func parseLatLon(s string) (domain.Coordinates, error) {
	latS, lonS, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("%q: expected LAT,LON", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%q: invalid latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonS), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%q: invalid longitude: %w", s, err)
	}

	c := domain.Coordinates{Lat: lat, Lon: lon}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("%q: coordinates out of range", s)
	}
	return c, nil
}
