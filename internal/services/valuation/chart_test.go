package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

func TestRenderSeriesChartProducesPNG(t *testing.T) {
	series := &models.ValuationSeries{
		Labels:   []string{"01/06", "02/06", "03/06", "04/06"},
		Invested: []float64{100, 200, 200, 300},
		Current:  []float64{100, 210, 195, 320},
		Points:   4,
	}

	png, err := RenderSeriesChart(series)
	require.NoError(t, err)
	require.True(t, len(png) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestRenderSeriesChartRejectsSinglePoint(t *testing.T) {
	series := &models.ValuationSeries{
		Labels:   []string{"01/06"},
		Invested: []float64{100},
		Current:  []float64{100},
		Points:   1,
	}

	_, err := RenderSeriesChart(series)
	assert.Error(t, err)
}
