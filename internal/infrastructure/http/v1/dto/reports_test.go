package dto

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/types"
	"shopledger/internal/domain/reports"
)

func TestPeriodQuery_ToFilter(t *testing.T) {
	q := PeriodQuery{StartDate: "2026-01-01", EndDate: "2026-06-30", Limit: 10}

	filter, err := q.ToFilter()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), filter.StartDate)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), filter.EndDate)
	assert.Equal(t, 10, filter.Limit)
}

func TestPeriodQuery_ToFilter_EmptyDatesStayZero(t *testing.T) {
	q := PeriodQuery{}

	filter, err := q.ToFilter()
	require.NoError(t, err)
	assert.True(t, filter.StartDate.IsZero())
	assert.True(t, filter.EndDate.IsZero())
}

func TestPeriodQuery_ToFilter_BadDate(t *testing.T) {
	q := PeriodQuery{StartDate: "01/02/2026"}

	_, err := q.ToFilter()
	assert.Error(t, err)
}

func TestPeriodQuery_WantsCSV(t *testing.T) {
	assert.True(t, (&PeriodQuery{Format: "csv"}).WantsCSV())
	assert.False(t, (&PeriodQuery{Format: "json"}).WantsCSV())
	assert.False(t, (&PeriodQuery{}).WantsCSV())
}

func TestMonthlyStockQuery_ToFilter(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	filter, err := (&MonthlyStockQuery{Month: "2026-03"}).ToFilter(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), filter.Month)

	filter, err = (&MonthlyStockQuery{}).ToFilter(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), filter.Month)

	_, err = (&MonthlyStockQuery{Month: "March 2026"}).ToFilter(now)
	assert.Error(t, err)
}

func TestMonthlySalesCSV(t *testing.T) {
	rows := []reports.MonthlySalesRow{
		{
			Month:      "2026-01",
			OrderCount: 12,
			UnitsSold:  types.NewQuantityFromFloat64(30),
			Revenue:    types.MustMoney("450.50"),
		},
	}

	header, records := MonthlySalesCSV(rows)

	assert.Equal(t, []string{"month", "order_count", "units_sold", "revenue"}, header)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"2026-01", "12", "30.0000", "450.5"}, records[0])
}

func TestDeadStockCSV_NilLastSale(t *testing.T) {
	lastSale := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := []reports.DeadStockRow{
		{Code: "SKU-1", Name: "Widget", Stock: types.NewQuantityFromFloat64(7), LastSaleDate: &lastSale},
		{Code: "SKU-2", Name: "Gadget", Stock: types.NewQuantityFromFloat64(3)},
	}

	_, records := DeadStockCSV(rows)

	require.Len(t, records, 2)
	assert.Equal(t, "2026-01-15", records[0][3])
	assert.Equal(t, "", records[1][3])
}

func TestWriteCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	err := WriteCSV(c, "report.csv",
		[]string{"code", "name"},
		[][]string{{"SKU-1", "Widget, large"}},
	)
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `report.csv`)
	assert.Equal(t, "code,name\nSKU-1,\"Widget, large\"\n", rec.Body.String())
}
