package permission

// ActionSet is a set of actions stored as a bit mask.
type ActionSet uint8

// FullSet holds every action.
var FullSet = NewActionSet(actions...) //nolint:gochecknoglobals

// NewActionSet builds a set from the given actions.
func NewActionSet(acts ...Action) ActionSet {
	var set ActionSet
	for _, a := range acts {
		set = set.With(a)
	}

	return set
}

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	return s&a.bit() != 0
}

// With returns the set plus a.
func (s ActionSet) With(a Action) ActionSet {
	return s | a.bit()
}

// Without returns the set minus a.
func (s ActionSet) Without(a Action) ActionSet {
	return s &^ a.bit()
}

// Len returns the number of actions in the set.
func (s ActionSet) Len() int {
	n := 0

	for _, a := range actions {
		if s.Has(a) {
			n++
		}
	}

	return n
}

// IsFull reports whether every action is present.
func (s ActionSet) IsFull() bool {
	return s&FullSet == FullSet
}

// IsEmpty reports whether no action is present.
func (s ActionSet) IsEmpty() bool {
	return s&FullSet == 0
}

// Actions lists the members in canonical order.
func (s ActionSet) Actions() []Action {
	out := make([]Action, 0, len(actions))

	for _, a := range actions {
		if s.Has(a) {
			out = append(out, a)
		}
	}

	return out
}
