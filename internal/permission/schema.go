package permission

import (
	"fmt"
	"slices"
	"strings"
)

// Section is a functional area of the admin system permissions are granted on.
type Section string

// Action is an operation that can be permitted per section.
type Action string

const (
	// SectionDashboard covers the admin dashboard and server performance view.
	SectionDashboard Section = "dashboard"
	// SectionPages covers static site pages.
	SectionPages Section = "pages"
	// SectionMedia covers notices, press releases and the media library.
	SectionMedia Section = "media"
	// SectionJobs covers job postings and applications.
	SectionJobs Section = "jobs"
	// SectionTenders covers tenders, contracts and their download requests.
	SectionTenders Section = "tenders"
	// SectionUsers covers users, roles and permissions.
	SectionUsers Section = "users"
	// SectionSettings covers site wide settings.
	SectionSettings Section = "settings"
)

const (
	// ActionView allows reading.
	ActionView Action = "view"
	// ActionCreate allows creating.
	ActionCreate Action = "create"
	// ActionEdit allows modifying.
	ActionEdit Action = "edit"
	// ActionDelete allows removing.
	ActionDelete Action = "delete"
)

var (
	sections = []Section{
		SectionDashboard,
		SectionPages,
		SectionMedia,
		SectionJobs,
		SectionTenders,
		SectionUsers,
		SectionSettings,
	}

	actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

	sectionLabels = map[Section]string{
		SectionDashboard: "Dashboard",
		SectionPages:     "Pages",
		SectionMedia:     "Media",
		SectionJobs:      "Jobs",
		SectionTenders:   "Tenders",
		SectionUsers:     "Users",
		SectionSettings:  "Settings",
	}
)

// Sections returns all sections in display order.
func Sections() []Section {
	return slices.Clone(sections)
}

// Actions returns all actions in display order.
func Actions() []Action {
	return slices.Clone(actions)
}

// MaxCount is the number of cells of a full matrix.
func MaxCount() int {
	return len(sections) * len(actions)
}

// ParseSection validates s against the fixed section set.
func ParseSection(s string) (Section, error) {
	sec := Section(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(sections, sec) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}

	return sec, nil
}

// ParseAction validates s against the fixed action set.
func ParseAction(s string) (Action, error) {
	act := Action(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(actions, act) {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}

	return act, nil
}

// Label returns the display label of the section.
func (s Section) Label() string {
	if l, ok := sectionLabels[s]; ok {
		return l
	}

	return string(s)
}

// Label returns the display label of the action.
func (a Action) Label() string {
	if a == "" {
		return ""
	}

	return strings.ToUpper(string(a[:1])) + string(a[1:])
}

// Key returns the "section.action" key used in forms and storage.
func Key(s Section, a Action) string {
	return string(s) + "." + string(a)
}

// ParseKey parses a "section.action" key.
func ParseKey(key string) (Section, Action, error) {
	secStr, actStr, found := strings.Cut(key, ".")
	if !found {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownAction, key)
	}

	sec, err := ParseSection(secStr)
	if err != nil {
		return "", "", err
	}

	act, err := ParseAction(actStr)
	if err != nil {
		return "", "", err
	}

	return sec, act, nil
}

func (a Action) bit() ActionSet {
	idx := slices.Index(actions, a)
	if idx < 0 {
		return 0
	}

	return ActionSet(1) << idx
}
