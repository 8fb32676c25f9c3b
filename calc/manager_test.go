package calc_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metas/incentive-engine/calc"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func metricsFor(location int, revenueActual, revenueTarget string) calc.LocationMetrics {
	return calc.LocationMetrics{
		Location:      location,
		RevenueActual: revenueActual,
		RevenueTarget: revenueTarget,
		HBActual:      "100,00", HBTarget: "100,00",
		CostActual: "90,00", CostTarget: "100,00",
		TicketActual: "50,00", TicketTarget: "50,00",
	}
}

// =============================================================================
// LOCATION ROLLUP SCORING TESTS
// =============================================================================

func TestBuildLocationRollups_Bands(t *testing.T) {
	cases := []struct {
		actual string
		want   int64
	}{
		{"990,00", 0},     // 99%
		{"1.000,00", 200}, // 100%
		{"1.020,00", 250}, // 102%
		{"1.039,99", 250},
		{"1.040,00", 300}, // 104%
		{"2.000,00", 300},
	}

	for _, c := range cases {
		rollups := calc.BuildLocationRollups(
			[]calc.LocationMetrics{metricsFor(1, c.actual, "1.000,00")},
			nil, testLog())
		require.Len(t, rollups, 1)
		assert.Equal(t, c.want, rollups[0].RevenuePoints, "revenue %s", c.actual)
	}
}

func TestBuildLocationRollups_CostBandIsInverted(t *testing.T) {
	// Cost 90 against a 100 budget is 111% attainment: under budget scores.
	m := metricsFor(1, "1.000,00", "1.000,00")
	rollups := calc.BuildLocationRollups([]calc.LocationMetrics{m}, nil, testLog())
	require.Len(t, rollups, 1)
	assert.Equal(t, int64(300), rollups[0].CostPoints)

	m.CostActual, m.CostTarget = "110,00", "100,00" // over budget
	rollups = calc.BuildLocationRollups([]calc.LocationMetrics{m}, nil, testLog())
	assert.Equal(t, int64(0), rollups[0].CostPoints)
}

func TestBuildLocationRollups_CommissionPoolShare(t *testing.T) {
	// GIVEN: location 1 met revenue, location 2 missed; both pooled 1000 of
	//        commissions at their own location
	// THEN: pool is 10% when met, 5% when missed

	commissions := []calc.CommissionEntry{
		{Location: 1, RoleCode: 10, Amount: "600,00"},
		{Location: 1, RoleCode: 11, Amount: "400,00"},
		{Location: 2, RoleCode: 12, Amount: "1.000,00"},
	}
	metrics := []calc.LocationMetrics{
		metricsFor(1, "1.000,00", "1.000,00"),
		metricsFor(2, "900,00", "1.000,00"),
	}

	rollups := calc.BuildLocationRollups(metrics, commissions, testLog())
	require.Len(t, rollups, 2)
	assert.True(t, rollups[0].CommissionPool.Equal(dec("100")), "met: got %v", rollups[0].CommissionPool)
	assert.True(t, rollups[1].CommissionPool.Equal(dec("50")), "missed: got %v", rollups[1].CommissionPool)
}

func TestBuildLocationRollups_UnparsableComponentScoresZero(t *testing.T) {
	m := metricsFor(1, "oops", "1.000,00")
	rollups := calc.BuildLocationRollups([]calc.LocationMetrics{m}, nil, testLog())
	require.Len(t, rollups, 1)
	assert.Equal(t, int64(0), rollups[0].RevenuePoints)
	// Revenue attainment unknown: the pool falls back to the missed share.
	assert.True(t, rollups[0].CommissionPool.IsZero())
}

// =============================================================================
// ROLLUP APPLICATION TESTS
// =============================================================================

func managerRecord(location int, title string) calc.Record {
	r := record(location, 10, "MANAGER", title)
	r.Target = "1.000,00"
	r.Realized = "900,00"
	r.Accrued = "100,00"
	r.Paid = "100,00"
	r.Bonus = ""
	r.Total = "100,00"
	return r
}

func TestApplyLocationRollups_ReplacesManagerTotal(t *testing.T) {
	rollups := calc.BuildLocationRollups(
		[]calc.LocationMetrics{metricsFor(1, "1.040,00", "1.000,00")}, nil, testLog())
	// 300 + 200 (HB) + 300 (cost) + 200 (ticket) = 1000, no commission pool.

	out := calc.ApplyLocationRollups(
		[]calc.Record{managerRecord(1, "GERENTE")}, rollups, nil, testLog())
	require.Len(t, out, 1)

	assert.Equal(t, "1.000,00", out[0].Total)
	assert.Equal(t, "", out[0].Paid)
	assert.Equal(t, "", out[0].Bonus)
	// Accumulated commission stays visible.
	assert.Equal(t, "100,00", out[0].Accrued)
}

func TestApplyLocationRollups_TraineeGetsAdditiveTotal(t *testing.T) {
	rollups := calc.BuildLocationRollups(
		[]calc.LocationMetrics{metricsFor(1, "1.040,00", "1.000,00")}, nil, testLog())

	trainee := managerRecord(1, "GERENTE")
	trainees := map[string]struct{}{trainee.ID: {}}

	out := calc.ApplyLocationRollups([]calc.Record{trainee}, rollups, trainees, testLog())
	require.Len(t, out, 1)

	// Own 100 + location 1000, paid/bonus untouched.
	assert.Equal(t, "1.100,00", out[0].Total)
	assert.Equal(t, "100,00", out[0].Paid)
}

func TestApplyLocationRollups_NonManagerUntouched(t *testing.T) {
	rollups := calc.BuildLocationRollups(
		[]calc.LocationMetrics{metricsFor(1, "1.040,00", "1.000,00")}, nil, testLog())

	cashier := managerRecord(1, "OPERADOR DE CAIXA")
	out := calc.ApplyLocationRollups([]calc.Record{cashier}, rollups, nil, testLog())
	assert.Equal(t, cashier, out[0])
}

func TestApplyLocationRollups_NoRollupForLocationLeavesRecord(t *testing.T) {
	rollups := calc.BuildLocationRollups(
		[]calc.LocationMetrics{metricsFor(2, "1.000,00", "1.000,00")}, nil, testLog())

	manager := managerRecord(1, "GERENTE")
	out := calc.ApplyLocationRollups([]calc.Record{manager}, rollups, nil, testLog())
	assert.Equal(t, manager, out[0])
}
