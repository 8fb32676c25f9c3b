package calc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metas/incentive-engine/calc"
)

// =============================================================================
// SALES AGGREGATOR TESTS
// =============================================================================

func TestAggregateSales_PoolsAcrossLocationsForRegularRecords(t *testing.T) {
	// GIVEN: role 342 sold at two locations
	// WHEN: the record is not an exception role
	// THEN: its realized amount is the pooled sum

	roster := []calc.Record{record(1, 342, "A", "FARMACEUTICO")}
	entries := []calc.SalesEntry{
		{Location: 1, RoleCode: 342, Amount: "1.000,00"},
		{Location: 2, RoleCode: 342, Amount: "500,50"},
	}

	out := calc.AggregateSales(roster, entries, nil, testLog())
	require.Len(t, out, 1)
	assert.Equal(t, "1.500,50", out[0].Realized)
}

func TestAggregateSales_ExceptionRolesScopeToOwnLocation(t *testing.T) {
	// Exception-role records must ignore same-role sales at other locations.
	roster := []calc.Record{
		{ID: "7-342", Location: 7, RoleCode: 342, Exception: true},
	}
	entries := []calc.SalesEntry{
		{Location: 7, RoleCode: 342, Amount: "300,00"},
		{Location: 1, RoleCode: 342, Amount: "9.999,99"},
	}
	exception := map[int]struct{}{342: {}}

	out := calc.AggregateSales(roster, entries, exception, testLog())
	assert.Equal(t, "300,00", out[0].Realized)
}

func TestAggregateSales_NoEntriesLeavesBlankNotZero(t *testing.T) {
	roster := []calc.Record{record(1, 342, "A", "FARMACEUTICO")}

	out := calc.AggregateSales(roster, nil, nil, testLog())
	assert.Equal(t, "", out[0].Realized)
}

func TestAggregateSales_UnparsableAmountCountsAsZeroButPresent(t *testing.T) {
	roster := []calc.Record{record(1, 342, "A", "FARMACEUTICO")}
	entries := []calc.SalesEntry{
		{Location: 1, RoleCode: 342, Amount: "garbage"},
	}

	out := calc.AggregateSales(roster, entries, nil, testLog())
	// The key has data, so the cell shows a zero sum rather than staying blank.
	assert.Equal(t, "0,00", out[0].Realized)
}
