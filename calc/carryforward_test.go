package calc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metas/incentive-engine/calc"
	"github.com/metas/incentive-engine/table"
)

func TestTargetsFromPrevious_SkipsBlankIDsAndTargets(t *testing.T) {
	prev := table.FromRows([][]string{
		{"ID", "Meta", "Valor Realizado"},
		{"1-342", "4.000,85", "1,00"},
		{"", "7.400,00", ""},
		{"2-356", "", ""},
		{"3-225", "10.000,85", ""},
	})

	targets := calc.TargetsFromPrevious(prev, testLog())
	assert.Equal(t, map[string]string{
		"1-342": "4.000,85",
		"3-225": "10.000,85",
	}, targets)
}

func TestTargetsFromPrevious_NoPreviousOutput(t *testing.T) {
	targets := calc.TargetsFromPrevious(table.Table{}, testLog())
	assert.Empty(t, targets)
}

func TestRestoreTargets_KeyedByIdentifier(t *testing.T) {
	records := []calc.Record{
		record(1, 342, "A", "GERENTE"),
		record(2, 356, "B", "GERENTE"),
	}
	targets := map[string]string{"1-342": "4.000,85"}

	out := calc.RestoreTargets(records, targets)
	assert.Equal(t, "4.000,85", out[0].Target)
	assert.Equal(t, "", out[1].Target)
}
