package reel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridFromRows builds a column-major grid from row-major literals.
func gridFromRows(t *testing.T, m *Math, rows [][]Symbol) Grid {
	t.Helper()
	require.Len(t, rows, m.Rows)

	g := make(Grid, m.Columns)
	for c := 0; c < m.Columns; c++ {
		g[c] = make([]Symbol, m.Rows)
		for r := 0; r < m.Rows; r++ {
			require.Len(t, rows[r], m.Columns)
			g[c][r] = rows[r][c]
		}
	}
	return g
}

// quietRows returns filler rows that produce no line wins on the default
// math: no two equal adjacent symbols on any row or diagonal.
func quietRows() [][]Symbol {
	return [][]Symbol{
		{SymbolBell, SymbolLemon, SymbolBell, SymbolLemon, SymbolBell},
		{SymbolPlum, SymbolOrange, SymbolPlum, SymbolOrange, SymbolPlum},
		{SymbolLemon, SymbolBell, SymbolLemon, SymbolBell, SymbolLemon},
	}
}

func TestEvaluateLeadingRunOnly(t *testing.T) {
	m := DefaultMath()

	// Row 0: BAR BAR BAR PLUM BAR. The trailing BAR after the mismatch
	// must not extend the run.
	rows := quietRows()
	rows[0] = []Symbol{SymbolBar, SymbolBar, SymbolBar, SymbolPlum, SymbolBar}
	g := gridFromRows(t, m, rows)

	wins := Evaluate(m, g)
	require.Len(t, wins, 1)

	w := wins[0]
	assert.Equal(t, 1, w.Line)
	assert.Equal(t, SymbolBar, w.Symbol)
	assert.Equal(t, 3, w.Count)
	assert.Equal(t, m.Multiplier(SymbolBar, 3), w.Multiplier)
	assert.Equal(t, []Cell{{0, 0}, {1, 0}, {2, 0}}, w.Cells)
}

func TestEvaluateWildSubstitution(t *testing.T) {
	m := DefaultMath()

	t.Run("WildResolvesToTieBrokenSymbol", func(t *testing.T) {
		// WILD 7 7 BAR BAR: sevens and bars tie at two each; the
		// high-value fallback (7) wins the tie, giving run length 3.
		rows := quietRows()
		rows[0] = []Symbol{SymbolWild, SymbolSeven, SymbolSeven, SymbolBar, SymbolBar}
		g := gridFromRows(t, m, rows)

		wins := Evaluate(m, g)
		require.Len(t, wins, 1)
		assert.Equal(t, SymbolSeven, wins[0].Symbol)
		assert.Equal(t, 3, wins[0].Count)
	})

	t.Run("WildResolvesToMajority", func(t *testing.T) {
		// WILD CHERRY CHERRY CHERRY BAR: cherry is the clear majority.
		rows := quietRows()
		rows[0] = []Symbol{SymbolWild, SymbolCherry, SymbolCherry, SymbolCherry, SymbolBar}
		g := gridFromRows(t, m, rows)

		wins := Evaluate(m, g)
		require.Len(t, wins, 1)
		assert.Equal(t, SymbolCherry, wins[0].Symbol)
		assert.Equal(t, 4, wins[0].Count)
	})

	t.Run("WildExtendsRun", func(t *testing.T) {
		// CHERRY WILD CHERRY PLUM PLUM: wild substitutes mid-run.
		rows := quietRows()
		rows[0] = []Symbol{SymbolCherry, SymbolWild, SymbolCherry, SymbolPlum, SymbolPlum}
		g := gridFromRows(t, m, rows)

		wins := Evaluate(m, g)
		require.Len(t, wins, 1)
		assert.Equal(t, SymbolCherry, wins[0].Symbol)
		assert.Equal(t, 3, wins[0].Count)
	})

	t.Run("AllWildLinePaysOnWildTable", func(t *testing.T) {
		// No substitutable symbol: the run walks every non-scatter cell
		// and pays on the wild's own table.
		rows := quietRows()
		rows[1] = []Symbol{SymbolWild, SymbolWild, SymbolWild, SymbolWild, SymbolScatter}
		g := gridFromRows(t, m, rows)

		wins := Evaluate(m, g)
		require.Len(t, wins, 1)
		assert.Equal(t, SymbolWild, wins[0].Symbol)
		assert.Equal(t, 4, wins[0].Count)
		assert.Equal(t, m.Multiplier(SymbolWild, 4), wins[0].Multiplier)
	})
}

func TestEvaluateScatterExclusion(t *testing.T) {
	m := DefaultMath()

	t.Run("ScatterLeadingCellPaysNothing", func(t *testing.T) {
		rows := quietRows()
		rows[0] = []Symbol{SymbolScatter, SymbolCherry, SymbolCherry, SymbolCherry, SymbolCherry}
		g := gridFromRows(t, m, rows)

		assert.Empty(t, Evaluate(m, g))
	})

	t.Run("ScatterBreaksRun", func(t *testing.T) {
		rows := quietRows()
		rows[0] = []Symbol{SymbolCherry, SymbolCherry, SymbolScatter, SymbolCherry, SymbolCherry}
		g := gridFromRows(t, m, rows)

		wins := Evaluate(m, g)
		require.Len(t, wins, 1)
		assert.Equal(t, 2, wins[0].Count)
	})
}

func TestEvaluateRunBelowPayThreshold(t *testing.T) {
	m := DefaultMath()

	// BELL pays only from run length 3; a run of 2 yields nothing even
	// though it is >= 2.
	rows := quietRows()
	rows[0] = []Symbol{SymbolBell, SymbolBell, SymbolPlum, SymbolBell, SymbolBell}
	g := gridFromRows(t, m, rows)

	assert.Empty(t, Evaluate(m, g))
}

func TestEvaluateDiagonalLines(t *testing.T) {
	m := DefaultMath()

	// V-line 4 reads (0,0) (1,1) (2,2) (3,1) (4,0).
	rows := [][]Symbol{
		{SymbolSeven, SymbolLemon, SymbolBell, SymbolLemon, SymbolBell},
		{SymbolPlum, SymbolSeven, SymbolPlum, SymbolOrange, SymbolPlum},
		{SymbolLemon, SymbolBell, SymbolSeven, SymbolBell, SymbolLemon},
	}
	g := gridFromRows(t, m, rows)

	wins := Evaluate(m, g)
	require.Len(t, wins, 1)
	assert.Equal(t, 4, wins[0].Line)
	assert.Equal(t, SymbolSeven, wins[0].Symbol)
	assert.Equal(t, 3, wins[0].Count)
	assert.Equal(t, []Cell{{0, 0}, {1, 1}, {2, 2}}, wins[0].Cells)
}

func TestEvaluateIdempotent(t *testing.T) {
	m := DefaultMath()
	rows := quietRows()
	rows[0] = []Symbol{SymbolCherry, SymbolCherry, SymbolCherry, SymbolBar, SymbolBar}
	g := gridFromRows(t, m, rows)

	first := Evaluate(m, g)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(m, g), "evaluation must be pure")
	}
}
