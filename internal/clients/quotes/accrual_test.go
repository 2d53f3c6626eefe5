package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFixedIncomeValuePrefixed(t *testing.T) {
	c := NewClient("")
	ctx := context.Background()

	terms := models.FixedIncomeTerms{
		InstrumentType: "cdb",
		YieldType:      models.YieldPrefixed,
		FixedRate:      12.0,
		MaturityDate:   date(2030, 1, 1),
	}

	start := date(2024, 1, 1)

	// One calendar year ≈ 260.7 business days ≈ 1.035 years on the 252 basis.
	v, err := c.FixedIncomeValue(ctx, 1000, terms, start, date(2025, 1, 1))
	require.NoError(t, err)
	assert.Greater(t, v, 1100.0)
	assert.Less(t, v, 1150.0)
}

func TestFixedIncomeValueBeforeStart(t *testing.T) {
	c := NewClient("")
	terms := models.FixedIncomeTerms{YieldType: models.YieldPrefixed, FixedRate: 10}

	v, err := c.FixedIncomeValue(context.Background(), 500, terms, date(2024, 6, 1), date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 500.0, v)
}

func TestFixedIncomeValueStopsAtMaturity(t *testing.T) {
	c := NewClient("")
	terms := models.FixedIncomeTerms{
		YieldType:    models.YieldPrefixed,
		FixedRate:    10,
		MaturityDate: date(2025, 1, 1),
	}
	start := date(2024, 1, 1)

	atMaturity, err := c.FixedIncomeValue(context.Background(), 1000, terms, start, date(2025, 1, 1))
	require.NoError(t, err)

	pastMaturity, err := c.FixedIncomeValue(context.Background(), 1000, terms, start, date(2027, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, atMaturity, pastMaturity)
}

func TestFixedIncomeValueMonotonic(t *testing.T) {
	c := NewClient("")
	ctx := context.Background()
	terms := models.FixedIncomeTerms{
		YieldType:       models.YieldPostfixed,
		ReferenceIndex:  "cdi",
		IndexPercentage: 110,
	}
	start := date(2024, 1, 1)

	prev := 0.0
	for months := 1; months <= 24; months++ {
		v, err := c.FixedIncomeValue(ctx, 1000, terms, start, start.AddDate(0, months, 0))
		require.NoError(t, err)
		assert.Greater(t, v, prev, "accrual must be monotonic in asOf")
		prev = v
	}
}

func TestFixedIncomeValueHybrid(t *testing.T) {
	c := NewClient("")
	ctx := context.Background()
	start := date(2024, 1, 1)
	asOf := date(2025, 1, 1)

	hybrid := models.FixedIncomeTerms{
		YieldType:      models.YieldHybrid,
		ReferenceIndex: "ipca",
		FixedRate:      6,
	}
	indexOnly := models.FixedIncomeTerms{
		YieldType:       models.YieldPostfixed,
		ReferenceIndex:  "ipca",
		IndexPercentage: 100,
	}

	vHybrid, err := c.FixedIncomeValue(ctx, 1000, hybrid, start, asOf)
	require.NoError(t, err)
	vIndex, err := c.FixedIncomeValue(ctx, 1000, indexOnly, start, asOf)
	require.NoError(t, err)

	// IPCA + 6% must beat IPCA alone.
	assert.Greater(t, vHybrid, vIndex)
}

func TestFixedIncomeValueInvalidInputs(t *testing.T) {
	c := NewClient("")

	_, err := c.FixedIncomeValue(context.Background(), 0, models.FixedIncomeTerms{YieldType: models.YieldPrefixed}, date(2024, 1, 1), date(2025, 1, 1))
	assert.Error(t, err)

	_, err = c.FixedIncomeValue(context.Background(), 1000, models.FixedIncomeTerms{YieldType: "exotic"}, date(2024, 1, 1), date(2025, 1, 1))
	assert.Error(t, err)
}

func TestUnknownIndexDefaultsToCDI(t *testing.T) {
	assert.Equal(t, referenceIndexRates["cdi"], indexRateFor("something-new"))
	assert.Equal(t, referenceIndexRates["ipca"], indexRateFor(" IPCA "))
}
