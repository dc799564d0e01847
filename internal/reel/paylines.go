package reel

// Cell is a grid coordinate.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// LineWin reports one paying line: the resolved paying symbol, the length
// of the leading consecutive run and the cells that formed it. Cells past
// the first mismatch are never included.
type LineWin struct {
	Line       int    `json:"line"`
	Symbol     Symbol `json:"symbol"`
	Count      int    `json:"count"`
	Multiplier int64  `json:"multiplier"`
	Cells      []Cell `json:"cells"`
}

// Evaluate scans every configured payline over the grid and returns the
// wins. Scatter symbols never participate in line evaluation.
func Evaluate(m *Math, g Grid) []LineWin {
	var wins []LineWin
	for _, line := range m.Lines {
		if w := evaluateLine(m, g, line); w != nil {
			wins = append(wins, *w)
		}
	}
	return wins
}

func evaluateLine(m *Math, g Grid, line Line) *LineWin {
	symbols := make([]Symbol, m.Columns)
	for col := 0; col < m.Columns; col++ {
		symbols[col] = g[col][line.Rows[col]]
	}

	first := symbols[0]
	if first == m.Scatter {
		return nil
	}

	effective := first
	wildOnly := false
	if first == m.Wild {
		effective = m.resolveWild(symbols)
		wildOnly = effective == m.Wild
	}

	// Walk left to right counting the leading consecutive run.
	count := 0
	for col, sym := range symbols {
		match := sym == effective || sym == m.Wild
		if wildOnly {
			// No substitute resolvable: anything but scatter extends the run.
			match = sym != m.Scatter
		}
		if !match {
			break
		}
		count = col + 1
	}

	if count < 2 {
		return nil
	}
	mult := m.Multiplier(effective, count)
	if mult == 0 {
		return nil
	}

	cells := make([]Cell, count)
	for col := 0; col < count; col++ {
		cells[col] = Cell{Col: col, Row: line.Rows[col]}
	}
	return &LineWin{
		Line:       line.ID,
		Symbol:     effective,
		Count:      count,
		Multiplier: mult,
		Cells:      cells,
	}
}

// resolveWild picks the effective symbol for a wild-led line: the most
// frequent non-wild, non-scatter symbol on the line. Frequency ties go to
// the configured high-value fallback if it is among the tied symbols,
// otherwise to the tied symbol occurring earliest on the line. Returns
// the wild itself when the line holds no substitutable symbol.
func (m *Math) resolveWild(symbols []Symbol) Symbol {
	freq := make(map[Symbol]int)
	firstAt := make(map[Symbol]int)
	for i, s := range symbols {
		if s == m.Wild || s == m.Scatter {
			continue
		}
		freq[s]++
		if _, seen := firstAt[s]; !seen {
			firstAt[s] = i
		}
	}
	if len(freq) == 0 {
		return m.Wild
	}

	maxN := 0
	for _, n := range freq {
		if n > maxN {
			maxN = n
		}
	}

	best := Symbol("")
	for s, n := range freq {
		if n != maxN {
			continue
		}
		if s == m.WildFallback {
			return s
		}
		if best == "" || firstAt[s] < firstAt[best] {
			best = s
		}
	}
	return best
}
