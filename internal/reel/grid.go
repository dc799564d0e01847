package reel

import (
	"fmt"

	"github.com/akozlov/reelcore/internal/rng"
)

// Grid is the generated symbol matrix, indexed [column][row]. It is
// immutable once generated for a spin.
type Grid [][]Symbol

// GenerateGrid draws one symbol per cell from the weighted symbol table,
// honoring per-column wild exclusions. Each cell is an independent draw.
func GenerateGrid(m *Math, src rng.Source) (Grid, error) {
	grid := make(Grid, m.Columns)
	for col := 0; col < m.Columns; col++ {
		grid[col] = make([]Symbol, m.Rows)
		for row := 0; row < m.Rows; row++ {
			sym, err := drawSymbol(m, col, src)
			if err != nil {
				return nil, err
			}
			grid[col][row] = sym
		}
	}
	return grid, nil
}

// drawSymbol picks one symbol by cumulative weight boundary:
// u ~ Uniform(0, total), first symbol whose boundary exceeds u wins.
func drawSymbol(m *Math, col int, src rng.Source) (Symbol, error) {
	wildOK := m.wildAllowed(col)

	var total int64
	for _, s := range m.Symbols {
		if s.ID == m.Wild && !wildOK {
			continue
		}
		total += s.Weight
	}

	u, err := src.Int64n(total)
	if err != nil {
		return "", fmt.Errorf("failed to draw symbol: %w", err)
	}

	var cum int64
	for _, s := range m.Symbols {
		if s.ID == m.Wild && !wildOK {
			continue
		}
		cum += s.Weight
		if u < cum {
			return s.ID, nil
		}
	}
	// Unreachable: u < total by construction.
	return m.Symbols[len(m.Symbols)-1].ID, nil
}

// ScatterCount counts scatter symbols anywhere on the grid, position
// independent.
func (g Grid) ScatterCount(scatter Symbol) int {
	n := 0
	for _, col := range g {
		for _, sym := range col {
			if sym == scatter {
				n++
			}
		}
	}
	return n
}

// RowMajor returns the grid transposed into row-major order for display.
func (g Grid) RowMajor() [][]Symbol {
	if len(g) == 0 {
		return nil
	}
	rows := make([][]Symbol, len(g[0]))
	for r := range rows {
		rows[r] = make([]Symbol, len(g))
		for c := range g {
			rows[r][c] = g[c][r]
		}
	}
	return rows
}
