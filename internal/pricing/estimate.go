package pricing

import (
	"sort"
	"strings"
	"trip-planner-service/internal/domain"
)

const (
	ModeCity      = "city"
	ModeMultiCity = "multi_city"

	contingencyRate = 0.08
)

var alternativeDestinations = []string{"sri_lanka", "thailand", "malaysia", "domestic"}

type EstimateRequest struct {
	Destination string
	Days        int
	Persons     int
	Tier        string
	// Total local travel; nil uses the per-day default for Mode.
	TransportKM *float64
	Mode        string
}

// DefaultDailyKM estimates total local travel for a trip.
func DefaultDailyKM(days int, mode string) float64 {
	if mode == ModeMultiCity {
		return 80 * float64(days)
	}
	return 30 * float64(days)
}

func (m *Model) Estimate(req EstimateRequest) domain.BudgetBreakdown {
	tier := strings.ToLower(strings.TrimSpace(req.Tier))
	if _, ok := m.Hotels[tier]; !ok {
		tier = fallbackTier
	}

	persons := req.Persons
	if persons < 1 {
		persons = 1
	}

	flight := SampleRange(m.flight(req.Destination)) * persons

	nights := max(1, req.Days)
	rooms := max(1, (persons+1)/2)
	hotel := SampleRange(m.hotel(tier)) * nights * rooms

	meals := lookup(m.Meals, tier, fallbackTier) * req.Days * persons
	sightseeing := lookup(m.Sightseeing, tier, fallbackTier) * req.Days * persons

	km := DefaultDailyKM(req.Days, req.Mode)
	if req.TransportKM != nil {
		km = *req.TransportKM
	}
	perKM := lookup(m.TransportPerKM, Key(req.Destination), fallbackCountry)
	transport := int(km * float64(perKM))

	subtotal := flight + hotel + meals + sightseeing + transport
	contingency := int(float64(subtotal) * contingencyRate)

	return domain.BudgetBreakdown{
		Destination:    req.Destination,
		Days:           req.Days,
		Persons:        persons,
		Flight:         flight,
		Hotel:          hotel,
		Meals:          meals,
		Sightseeing:    sightseeing,
		LocalTransport: transport,
		Contingency:    contingency,
		TotalEstimated: subtotal + contingency,
		TransportKM:    km,
	}
}

// AssessFit compares budget with the estimate and adds advice lines.
func AssessFit(budget int, b domain.BudgetBreakdown) domain.BudgetAssessment {
	diff := budget - b.TotalEstimated
	fits := diff >= 0

	var advice []string
	if fits {
		advice = []string{"Your budget covers the estimated trip cost."}
	} else {
		advice = []string{
			"Your budget is insufficient for the current estimated itinerary.",
			"Options to fit budget:",
			"- Reduce trip length by 1-2 days",
			"- Choose cheaper hotel tier (budget)",
			"- Consider a closer or cheaper destination (e.g., Sri Lanka or domestic)",
			"- Travel off-season for lower flights/hotels",
		}
	}

	return domain.BudgetAssessment{
		BudgetProvided: budget,
		EstimatedTotal: b.TotalEstimated,
		Difference:     diff,
		Fits:           fits,
		Advice:         advice,
	}
}

// SuggestAlternatives prices cheaper destinations at mid tier. It returns
// those within budget, cheapest first, or the first three candidates when
// none fit.
func (m *Model) SuggestAlternatives(budget, days, persons int) []domain.BudgetAlternative {
	all := make([]domain.BudgetAlternative, 0, len(alternativeDestinations))
	for _, dest := range alternativeDestinations {
		b := m.Estimate(EstimateRequest{Destination: dest, Days: days, Persons: persons, Tier: fallbackTier})
		all = append(all, domain.BudgetAlternative{Destination: dest, EstimatedTotal: b.TotalEstimated})
	}

	under := make([]domain.BudgetAlternative, 0, len(all))
	for _, a := range all {
		if a.EstimatedTotal <= budget {
			under = append(under, a)
		}
	}
	if len(under) == 0 {
		return all[:3]
	}

	sort.SliceStable(under, func(i, j int) bool { return under[i].EstimatedTotal < under[j].EstimatedTotal })
	return under
}

// Run produces the full budget report. Alternatives are only computed when
// the trip does not fit.
func (m *Model) Run(req EstimateRequest, budget int) domain.BudgetReport {
	b := m.Estimate(req)
	a := AssessFit(budget, b)

	alts := []domain.BudgetAlternative{}
	if !a.Fits {
		alts = m.SuggestAlternatives(budget, req.Days, b.Persons)
	}

	return domain.BudgetReport{Breakdown: b, Assessment: a, Alternatives: alts}
}
