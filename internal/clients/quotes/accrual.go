package quotes

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// Annualized reference index rates (% per year) used by the closed-form
// accrual. These are last-published curve values, not live market data; the
// formula only needs a deterministic rate per index.
var referenceIndexRates = map[string]float64{
	"cdi":   13.65,
	"selic": 13.75,
	"ipca":  4.50,
	"tr":    1.80,
}

// businessDaysPerYear is the Brazilian fixed-income day-count convention.
const businessDaysPerYear = 252.0

// FixedIncomeValue computes the accrued value of a principal between its
// acquisition date and asOf using the instrument's yield terms. Accrual stops
// at maturity; an asOf before the start returns the principal unchanged.
func (c *Client) FixedIncomeValue(_ context.Context, principal float64, terms models.FixedIncomeTerms, start, asOf time.Time) (float64, error) {
	if principal <= 0 {
		return 0, fmt.Errorf("principal must be positive, got %.4f", principal)
	}
	if asOf.Before(start) {
		return principal, nil
	}
	if !terms.MaturityDate.IsZero() && asOf.After(terms.MaturityDate) {
		asOf = terms.MaturityDate
	}

	years := businessYears(start, asOf)
	if years <= 0 {
		return principal, nil
	}

	switch terms.YieldType {
	case models.YieldPrefixed:
		return principal * compound(terms.FixedRate, years), nil

	case models.YieldPostfixed:
		indexRate := indexRateFor(terms.ReferenceIndex)
		pct := terms.IndexPercentage
		if pct <= 0 {
			pct = 100
		}
		return principal * compound(indexRate*pct/100, years), nil

	case models.YieldHybrid:
		// Fixed component compounds on top of the index component,
		// e.g. IPCA + 6% a.a.
		indexRate := indexRateFor(terms.ReferenceIndex)
		return principal * compound(indexRate, years) * compound(terms.FixedRate, years), nil

	default:
		return 0, fmt.Errorf("unknown yield type %q", terms.YieldType)
	}
}

// compound returns the growth factor of an annual percentage rate over years.
func compound(annualPct float64, years float64) float64 {
	if annualPct <= -100 {
		return 0
	}
	return math.Pow(1+annualPct/100, years)
}

// indexRateFor resolves the annual rate of a reference index, defaulting to
// the CDI rate for unknown indexes.
func indexRateFor(index string) float64 {
	if r, ok := referenceIndexRates[strings.ToLower(strings.TrimSpace(index))]; ok {
		return r
	}
	return referenceIndexRates["cdi"]
}

// businessYears approximates elapsed business days over the 252-day
// convention. Calendar days are scaled by 5/7 rather than walking the
// calendar; holiday tables are out of scope for the accrual estimate.
func businessYears(start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	if days <= 0 {
		return 0
	}
	return (days * 5 / 7) / businessDaysPerYear
}
