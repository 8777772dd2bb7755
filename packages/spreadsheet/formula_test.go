package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormulaTableSharing(t *testing.T) {
	ft := NewFormulaTable()

	a := ft.InternFormula("R1C1 + 1", "R2C1")
	b := ft.InternFormula("r1c1+1", "R3C1")
	assert.Equal(t, a, b, "bodies differing only in case and spacing share an entry")
	assert.Equal(t, 1, ft.Count())
	assert.Equal(t, 2, ft.GetReferenceCount(a))

	tokens, ok := ft.GetTokens(a)
	require.True(t, ok)
	assert.Equal(t, []string{"R1C1", "+", "1"}, tokenValues(tokens))

	refs, ok := ft.GetCellRefs(a)
	require.True(t, ok)
	assert.Equal(t, []string{"R1C1"}, refs)
}

func TestFormulaTableReintern(t *testing.T) {
	ft := NewFormulaTable()

	a := ft.InternFormula("1+1", "R1C1")
	assert.Equal(t, a, ft.InternFormula("1+1", "R1C1"))
	assert.Equal(t, 1, ft.GetReferenceCount(a))

	b := ft.InternFormula("2+2", "R1C1")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 1, ft.Count(), "old formula dropped once unused")
	_, ok := ft.GetTokens(a)
	assert.False(t, ok)

	id, ok := ft.GetFormulaAtCell("R1C1")
	require.True(t, ok)
	assert.Equal(t, b, id)
}

func TestFormulaTableRelease(t *testing.T) {
	ft := NewFormulaTable()

	id := ft.InternFormula("SUM(R1C1,R1C1,R02C3)", "R5C5")
	ft.InternFormula("SUM(R1C1,R1C1,R02C3)", "R6C6")

	refs, _ := ft.GetCellRefs(id)
	assert.Equal(t, []string{"R1C1", "R2C3"}, refs)

	assert.False(t, ft.Release("R5C5"))
	assert.True(t, ft.Release("R6C6"))
	assert.False(t, ft.Release("R6C6"))
	assert.Equal(t, 0, ft.Count())

	_, ok := ft.GetFormulaAtCell("R5C5")
	assert.False(t, ok)
}

func TestFormulaTableClear(t *testing.T) {
	ft := NewFormulaTable()
	ft.InternFormula("1", "R1C1")
	ft.InternFormula("2", "R1C2")
	require.Equal(t, 2, ft.Count())

	ft.Clear()
	assert.Equal(t, 0, ft.Count())
	assert.Equal(t, uint32(1), ft.InternFormula("3", "R1C3"))
}
