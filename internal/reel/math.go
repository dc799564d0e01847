// Package reel implements the slot reel outcome generator and payline
// evaluator. Everything here is pure computation over an injected random
// source; no package state survives a spin.
package reel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Symbol identifies a reel symbol.
type Symbol string

const (
	SymbolSeven   Symbol = "7"
	SymbolBar     Symbol = "BAR"
	SymbolBell    Symbol = "BELL"
	SymbolGrapes  Symbol = "GRAPES"
	SymbolPlum    Symbol = "PLUM"
	SymbolOrange  Symbol = "ORANGE"
	SymbolLemon   Symbol = "LEMON"
	SymbolCherry  Symbol = "CHERRY"
	SymbolWild    Symbol = "WILD"
	SymbolScatter Symbol = "STAR"
)

// SymbolConfig holds a symbol's draw weight and its multiplier table
// indexed by consecutive run length. Index 0 is unused.
type SymbolConfig struct {
	ID          Symbol  `yaml:"id"`
	Weight      int64   `yaml:"weight"`
	Multipliers []int64 `yaml:"multipliers"`
}

// Line is a payline: Rows[i] gives the row read in column i.
type Line struct {
	ID   int   `yaml:"id"`
	Rows []int `yaml:"rows"`
}

// Math is the complete game math for a reel game: symbol weights,
// multiplier tables, payline definitions and feature rules.
type Math struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`

	Symbols []SymbolConfig `yaml:"symbols"`

	Wild    Symbol `yaml:"wild"`
	Scatter Symbol `yaml:"scatter"`
	// WildFallback breaks frequency ties during wild substitution.
	WildFallback Symbol `yaml:"wild_fallback"`
	// NoWildColumns lists columns the wild may not land in.
	NoWildColumns []int `yaml:"no_wild_columns"`

	Lines []Line `yaml:"lines"`
	// LineUnitDivisor converts the total bet into a per-line unit:
	// line win = floor(bet/divisor) * multiplier.
	LineUnitDivisor int64 `yaml:"line_unit_divisor"`

	ScatterTrigger     int   `yaml:"scatter_trigger"`
	FreeSpinAward      int   `yaml:"free_spin_award"`
	FreeSpinCap        int   `yaml:"free_spin_cap"`
	FreeSpinMultiplier int64 `yaml:"free_spin_multiplier"`
}

// DefaultMath returns the built-in 5x3 game math: three row lines plus
// two diagonal V-lines, wild barred from the first and last column.
func DefaultMath() *Math {
	return &Math{
		Columns: 5,
		Rows:    3,
		Symbols: []SymbolConfig{
			{ID: SymbolSeven, Weight: 2, Multipliers: []int64{0, 0, 10, 50, 200, 1000}},
			{ID: SymbolWild, Weight: 2, Multipliers: []int64{0, 0, 15, 75, 250, 1500}},
			{ID: SymbolBar, Weight: 4, Multipliers: []int64{0, 0, 5, 25, 100, 400}},
			{ID: SymbolBell, Weight: 6, Multipliers: []int64{0, 0, 0, 20, 60, 200}},
			{ID: SymbolGrapes, Weight: 8, Multipliers: []int64{0, 0, 0, 15, 40, 120}},
			{ID: SymbolPlum, Weight: 10, Multipliers: []int64{0, 0, 0, 10, 25, 80}},
			{ID: SymbolOrange, Weight: 12, Multipliers: []int64{0, 0, 0, 8, 20, 60}},
			{ID: SymbolLemon, Weight: 14, Multipliers: []int64{0, 0, 0, 5, 15, 40}},
			{ID: SymbolCherry, Weight: 16, Multipliers: []int64{0, 0, 2, 5, 10, 25}},
			{ID: SymbolScatter, Weight: 3, Multipliers: []int64{0, 0, 0, 0, 0, 0}},
		},
		Wild:          SymbolWild,
		Scatter:       SymbolScatter,
		WildFallback:  SymbolSeven,
		NoWildColumns: []int{0, 4},
		Lines: []Line{
			{ID: 1, Rows: []int{0, 0, 0, 0, 0}},
			{ID: 2, Rows: []int{1, 1, 1, 1, 1}},
			{ID: 3, Rows: []int{2, 2, 2, 2, 2}},
			{ID: 4, Rows: []int{0, 1, 2, 1, 0}},
			{ID: 5, Rows: []int{2, 1, 0, 1, 2}},
		},
		LineUnitDivisor:    5,
		ScatterTrigger:     3,
		FreeSpinAward:      10,
		FreeSpinCap:        30,
		FreeSpinMultiplier: 2,
	}
}

// LoadMath reads game math from a YAML file and validates it.
func LoadMath(path string) (*Math, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game math: %w", err)
	}

	var m Math
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse game math: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the math is internally consistent.
func (m *Math) Validate() error {
	if m.Columns < 3 || m.Rows < 1 {
		return fmt.Errorf("invalid grid size %dx%d", m.Columns, m.Rows)
	}
	if len(m.Symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}

	var total int64
	for _, s := range m.Symbols {
		if s.Weight <= 0 {
			return fmt.Errorf("symbol %s has non-positive weight", s.ID)
		}
		if len(s.Multipliers) != m.Columns+1 {
			return fmt.Errorf("symbol %s multiplier table must have %d entries", s.ID, m.Columns+1)
		}
		total += s.Weight
	}
	if total <= 0 {
		return fmt.Errorf("total symbol weight must be positive")
	}

	if m.symbol(m.Wild) == nil {
		return fmt.Errorf("wild symbol %s not in symbol table", m.Wild)
	}
	if m.symbol(m.Scatter) == nil {
		return fmt.Errorf("scatter symbol %s not in symbol table", m.Scatter)
	}

	for _, l := range m.Lines {
		if len(l.Rows) != m.Columns {
			return fmt.Errorf("line %d must span %d columns", l.ID, m.Columns)
		}
		for _, r := range l.Rows {
			if r < 0 || r >= m.Rows {
				return fmt.Errorf("line %d references row %d outside grid", l.ID, r)
			}
		}
	}

	if m.LineUnitDivisor <= 0 {
		return fmt.Errorf("line unit divisor must be positive")
	}
	if m.ScatterTrigger < 1 {
		return fmt.Errorf("scatter trigger must be at least 1")
	}
	return nil
}

// symbol returns the config for an id, or nil.
func (m *Math) symbol(id Symbol) *SymbolConfig {
	for i := range m.Symbols {
		if m.Symbols[i].ID == id {
			return &m.Symbols[i]
		}
	}
	return nil
}

// Multiplier returns the paytable multiplier for a symbol at a run length.
func (m *Math) Multiplier(id Symbol, runLength int) int64 {
	s := m.symbol(id)
	if s == nil || runLength < 0 || runLength >= len(s.Multipliers) {
		return 0
	}
	return s.Multipliers[runLength]
}

func (m *Math) wildAllowed(col int) bool {
	for _, c := range m.NoWildColumns {
		if c == col {
			return false
		}
	}
	return true
}
