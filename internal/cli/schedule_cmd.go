package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/services"

	"github.com/spf13/cobra"
)

func newScheduleCmd(app *App) *cobra.Command {
	var (
		file      string
		maxVisits int
		start     string
		dwell     int
		maxDrive  float64
		startDate string
	)

	cmd := &cobra.Command{
		Use:   "schedule -f input.json",
		Short: "Schedule points into days from a precomputed travel matrix",
		Long: "Reads a JSON document shaped like the POST /itineraries body " +
			"({points, matrix, options}) and prints the itinerary as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readItineraryRequest(cmd, file)
			if err != nil {
				return err
			}

			opts, err := in.Options.Apply(app.Schedule)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("max-visits") {
				opts.MaxVisitsPerDay = maxVisits
			}
			if flags.Changed("start") {
				opts.DayStartTime = start
			}
			if flags.Changed("dwell") {
				opts.DwellMinutes = dwell
			}
			if flags.Changed("max-drive") {
				opts.MaxDriveSecondsPerDay = maxDrive
			}
			if flags.Changed("start-date") {
				d, err := time.Parse(time.DateOnly, startDate)
				if err != nil {
					return fmt.Errorf("--start-date must be YYYY-MM-DD: %w", err)
				}
				opts.StartDate = d
			}

			points, names := in.SplitPoints()

			it, err := services.ScheduleItinerary(points, in.Matrix.TravelMatrix(names), opts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.NewItineraryResponse(it))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Input JSON file (- for stdin)")
	cmd.Flags().IntVar(&maxVisits, "max-visits", services.DefaultMaxVisitsPerDay, "Maximum visits per day")
	cmd.Flags().StringVar(&start, "start", services.DefaultDayStartTime, "Day start time (HH:MM)")
	cmd.Flags().IntVar(&dwell, "dwell", services.DefaultDwellMinutes, "Minutes spent at each stop")
	cmd.Flags().Float64Var(&maxDrive, "max-drive", services.DefaultMaxDriveSecondsPerDay, "Drive budget per day in seconds")
	cmd.Flags().StringVar(&startDate, "start-date", "", "Date of day 1 (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readItineraryRequest(cmd *cobra.Command, path string) (dto.ItineraryRequest, error) {
	var in dto.ItineraryRequest

	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return in, fmt.Errorf("read schedule input: %w", err)
	}

	if err := json.Unmarshal(b, &in); err != nil {
		return in, fmt.Errorf("parse schedule input %q: %w", path, err)
	}
	return in, nil
}
