package permission

import (
	"slices"
	"strings"
)

// Color is a display token used to group roles visually.
type Color string

// The role color palette.
const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorTeal   Color = "teal"
	ColorPink   Color = "pink"
	ColorIndigo Color = "indigo"
	ColorYellow Color = "yellow"
	ColorGray   Color = "gray"
)

// DefaultColor is used when a form leaves the color empty.
const DefaultColor = ColorBlue

var palette = []Color{ //nolint:gochecknoglobals
	ColorBlue, ColorGreen, ColorRed, ColorPurple, ColorOrange,
	ColorTeal, ColorPink, ColorIndigo, ColorYellow, ColorGray,
}

// Palette returns all role colors.
func Palette() []Color {
	return slices.Clone(palette)
}

// Valid reports whether c is part of the palette.
func (c Color) Valid() bool {
	return slices.Contains(palette, c)
}

// Role is a named bundle of permissions.
type Role struct {
	ID          uint64
	Name        string
	Description string
	Permissions Matrix
	UserCount   int
	Color       Color
	IsSystem    bool
}

// Clone returns a copy that shares no state with r.
func (r Role) Clone() Role {
	r.Permissions = r.Permissions.Clone()
	return r
}

// Form is the editable part of a role as collected by the add/edit form.
type Form struct {
	Name        string `form:"name" validate:"required,max=100"`
	Description string `form:"description" validate:"required,max=500"`
	Color       Color  `form:"color" validate:"required,oneof=blue green red purple orange teal pink indigo yellow gray"`
	Permissions Matrix `form:"-" validate:"-"`
}

// FormFromRole prefills an edit form.
func FormFromRole(r Role) Form {
	return Form{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Permissions: r.Permissions.Clone(),
	}
}

func (f Form) normalized() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)

	f.Color = Color(strings.ToLower(strings.TrimSpace(string(f.Color))))
	if f.Color == "" {
		f.Color = DefaultColor
	}

	if f.Permissions == nil {
		f.Permissions = NewMatrix()
	}

	return f
}

var fieldLabels = map[string]string{ //nolint:gochecknoglobals
	"name":        "Role name",
	"description": "Description",
	"color":       "Color",
}

// DefaultRoles is the seed list used on an empty store.
func DefaultRoles() []Role {
	contentEditor := NewMatrix()
	for _, s := range []Section{SectionPages, SectionMedia} {
		contentEditor[s] = NewActionSet(ActionView, ActionCreate, ActionEdit)
	}

	contentEditor[SectionDashboard] = NewActionSet(ActionView)

	hr := NewMatrix()
	hr[SectionDashboard] = NewActionSet(ActionView)
	hr[SectionJobs] = FullSet

	procurement := NewMatrix()
	procurement[SectionDashboard] = NewActionSet(ActionView)
	procurement[SectionTenders] = FullSet
	procurement[SectionMedia] = NewActionSet(ActionView)

	viewer := NewMatrix()
	for _, s := range sections {
		viewer[s] = NewActionSet(ActionView)
	}

	admin := FullMatrix()
	admin[SectionSettings] = NewActionSet(ActionView)

	return []Role{
		{
			Name:        "Super Admin",
			Description: "Full access to every section of the back-office.",
			Permissions: FullMatrix(),
			UserCount:   1,
			Color:       ColorRed,
			IsSystem:    true,
		},
		{
			Name:        "Administrator",
			Description: "Manages content, users and tenders. Read-only access to settings.",
			Permissions: admin,
			UserCount:   2, //nolint:mnd
			Color:       ColorPurple,
			IsSystem:    true,
		},
		{
			Name:        "Content Editor",
			Description: "Creates and edits pages, notices and media.",
			Permissions: contentEditor,
			UserCount:   4, //nolint:mnd
			Color:       ColorBlue,
		},
		{
			Name:        "HR Manager",
			Description: "Publishes job openings and reviews applications.",
			Permissions: hr,
			UserCount:   2, //nolint:mnd
			Color:       ColorGreen,
		},
		{
			Name:        "Procurement Officer",
			Description: "Publishes tenders and contracts and follows download requests.",
			Permissions: procurement,
			UserCount:   3, //nolint:mnd
			Color:       ColorOrange,
		},
		{
			Name:        "Viewer",
			Description: "Read-only access to the back-office.",
			Permissions: viewer,
			UserCount:   6, //nolint:mnd
			Color:       ColorGray,
		},
	}
}
