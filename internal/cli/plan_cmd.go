package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/services"

	"github.com/spf13/cobra"
)

type planFlags struct {
	days      int
	persons   int
	budget    int
	tier      string
	startDate string
	asJSON    bool
}

func newPlanCmd(app *App) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan DESTINATION",
		Short: "Run the full planning pipeline for a destination",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, app, strings.Join(args, " "), f)
		},
	}

	cmd.Flags().IntVar(&f.days, "days", domain.DefaultTripDays, "Trip length in days")
	cmd.Flags().IntVar(&f.persons, "persons", domain.DefaultPersons, "Number of travellers")
	cmd.Flags().IntVar(&f.budget, "budget", domain.DefaultBudgetINR, "Total budget in INR")
	cmd.Flags().StringVar(&f.tier, "tier", domain.DefaultBudgetTier, "Budget tier: budget, mid or premium")
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "First day of the trip (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the full plan state as JSON")
	return cmd
}

func runPlan(cmd *cobra.Command, app *App, destination string, f planFlags) error {
	req := domain.TripRequest{
		Destination: destination,
		Days:        f.days,
		Persons:     f.persons,
		BudgetINR:   f.budget,
		Tier:        f.tier,
	}
	if f.startDate != "" {
		start, err := time.Parse(time.DateOnly, f.startDate)
		if err != nil {
			return fmt.Errorf("--start-date must be YYYY-MM-DD: %w", err)
		}
		req.StartDate = start
	}

	ctx := cmd.Context()
	st, err := app.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.Planner.Plan(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	summary := services.FormatItinerary(state)
	fmt.Fprint(out, summary)
	if state.Narrative != "" && state.Narrative != summary {
		fmt.Fprintf(out, "\n%s\n", state.Narrative)
	}
	return nil
}
