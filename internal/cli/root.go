package cli

import (
	"context"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"

	"github.com/spf13/cobra"
)

// Planner runs the trip pipeline.
type Planner interface {
	Plan(ctx context.Context, req domain.TripRequest) (domain.TripState, error)
}

// Stack is the set of network-backed collaborators. It is opened lazily so
// that pure commands such as schedule never touch storage or the network.
type Stack struct {
	Planner  Planner
	Distance ports.DistanceProvider
	Close    func() error
}

// App holds what the commands need.
type App struct {
	Schedule services.ScheduleOptions
	Open     func(ctx context.Context) (*Stack, error)
}

// NewRootCmd creates the top-level "tripplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tripplan",
		Short:         "Plan multi-day trips and schedule day itineraries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newScheduleCmd(app),
		newDistanceCmd(app),
	)

	return root
}

func (a *App) open(ctx context.Context) (*Stack, error) {
	st, err := a.Open(ctx)
	if err != nil {
		return nil, err
	}
	if st.Close == nil {
		st.Close = func() error { return nil }
	}
	return st, nil
}
