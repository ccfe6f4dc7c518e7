package routing

// DefaultEfficiencyTolerance is the relative slack allowed before a routed
// cost counts as inefficient against the unforced default selection.
const DefaultEfficiencyTolerance = 0.02

// IsEfficient compares the actual cost of the (possibly overridden or
// enhanced) selection against the cost the rule-based default would have
// incurred for the same token counts. When the default cost cannot be
// computed there is no counterfactual to fail against, so the run counts as
// efficient by definition.
func IsEfficient(actualCost, defaultCost, tolerance float64) bool {
	if defaultCost <= 0 {
		return true
	}
	if tolerance <= 0 {
		tolerance = DefaultEfficiencyTolerance
	}
	return actualCost <= defaultCost*(1+tolerance)
}
