package permission

import (
	"math"
	"slices"
)

// quickTagLimit is the number of quick tags shown before "show more".
const quickTagLimit = 4

// SectionState classifies a section row for display.
type SectionState string

const (
	// StateNone means no action is granted.
	StateNone SectionState = "none"
	// StatePartial means some but not all actions are granted.
	StatePartial SectionState = "partial"
	// StateAll means every action is granted.
	StateAll SectionState = "all"
)

// Matrix maps sections to their allowed actions. A missing section is an
// empty set; empty sets are never stored.
type Matrix map[Section]ActionSet

// NewMatrix returns an empty matrix.
func NewMatrix() Matrix {
	return make(Matrix)
}

// FullMatrix returns a matrix granting everything.
func FullMatrix() Matrix {
	m := NewMatrix()
	m.SelectAll()

	return m
}

// ParseMatrix builds a matrix from "section.action" keys, e.g. checkbox values.
func ParseMatrix(keys []string) (Matrix, error) {
	m := NewMatrix()

	for _, key := range keys {
		sec, act, err := ParseKey(key)
		if err != nil {
			return nil, err
		}

		m.set(sec, m.Get(sec).With(act))
	}

	return m, nil
}

// Keys lists granted cells as "section.action" keys in canonical order.
func (m Matrix) Keys() []string {
	out := make([]string, 0, m.Count())

	for _, sec := range sections {
		for _, act := range m.Get(sec).Actions() {
			out = append(out, Key(sec, act))
		}
	}

	return out
}

// Get returns the action set of a section.
func (m Matrix) Get(s Section) ActionSet {
	return m[s]
}

// Has reports whether action a is granted on section s.
func (m Matrix) Has(s Section, a Action) bool {
	return m.Get(s).Has(a)
}

// Clone returns an independent copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// Equal reports whether both matrices grant the same cells.
func (m Matrix) Equal(other Matrix) bool {
	for _, sec := range sections {
		if m.Get(sec) != other.Get(sec) {
			return false
		}
	}

	return true
}

// ToggleCell flips action a on section s.
func (m *Matrix) ToggleCell(s Section, a Action) {
	set := m.Get(s)
	if set.Has(a) {
		m.set(s, set.Without(a))
		return
	}

	m.set(s, set.With(a))
}

// ToggleSection clears a fully granted section, otherwise grants it fully.
func (m *Matrix) ToggleSection(s Section) {
	if m.Get(s).IsFull() {
		m.set(s, 0)
		return
	}

	m.set(s, FullSet)
}

// ToggleColumn removes action a from every section when all sections have
// it, otherwise adds it to each section lacking it.
func (m *Matrix) ToggleColumn(a Action) {
	if m.ColumnFull(a) {
		for _, sec := range sections {
			m.set(sec, m.Get(sec).Without(a))
		}

		return
	}

	for _, sec := range sections {
		m.set(sec, m.Get(sec).With(a))
	}
}

// ColumnFull reports whether every section grants action a.
func (m Matrix) ColumnFull(a Action) bool {
	for _, sec := range sections {
		if !m.Has(sec, a) {
			return false
		}
	}

	return true
}

// SelectAll grants every action on every section.
func (m *Matrix) SelectAll() {
	for _, sec := range sections {
		m.set(sec, FullSet)
	}
}

// ClearAll revokes everything.
func (m *Matrix) ClearAll() {
	for _, sec := range sections {
		m.set(sec, 0)
	}
}

// Count returns the number of granted cells.
func (m Matrix) Count() int {
	n := 0
	for _, sec := range sections {
		n += m.Get(sec).Len()
	}

	return n
}

// Percentage returns Count relative to MaxCount, rounded to whole percent.
func (m Matrix) Percentage() int {
	return int(math.Round(float64(m.Count()) / float64(MaxCount()) * 100)) //nolint:mnd
}

// SectionState classifies section s as none, partial or all.
func (m Matrix) SectionState(s Section) SectionState {
	set := m.Get(s)

	switch {
	case set.IsFull():
		return StateAll
	case set.IsEmpty():
		return StateNone
	default:
		return StatePartial
	}
}

// QuickTags lists sections with at least one grant, in display order,
// limited to the first four unless expanded.
func (m Matrix) QuickTags(expanded bool) []Section {
	out := make([]Section, 0, len(sections))

	for _, sec := range sections {
		if !m.Get(sec).IsEmpty() {
			out = append(out, sec)
		}
	}

	if !expanded && len(out) > quickTagLimit {
		return slices.Clip(out[:quickTagLimit])
	}

	return out
}

// HiddenTags returns how many quick tags are cut off when not expanded.
func (m Matrix) HiddenTags() int {
	n := len(m.QuickTags(true)) - quickTagLimit
	if n < 0 {
		return 0
	}

	return n
}

func (m *Matrix) set(s Section, set ActionSet) {
	if *m == nil {
		*m = NewMatrix()
	}

	if set.IsEmpty() {
		delete(*m, s)
		return
	}

	(*m)[s] = set & FullSet
}
