package role

import (
	"errors"

	"github.com/corpsite/corpsite/internal/permission"
)

var errUnknownOp = errors.New("unknown matrix operation")

// Row is a role card of the list.
type Row struct {
	permission.Role
	Tags       []permission.Section
	HiddenTags int
	Expanded   bool
	Count      int
	Percentage int
}

// Cell is a checkbox of the matrix editor.
type Cell struct {
	Action  permission.Action
	Key     string
	Checked bool
}

// SectionRow is a row of the matrix editor.
type SectionRow struct {
	Section permission.Section
	Label   string
	State   permission.SectionState
	Cells   []Cell
}

// Column is a header of the matrix editor.
type Column struct {
	Action permission.Action
	Label  string
	Full   bool
}

// MatrixView is the matrix editor as rendered.
type MatrixView struct {
	Columns    []Column
	Rows       []SectionRow
	Count      int
	Max        int
	Percentage int
}

func rows(roles []permission.Role, expand uint64) []Row {
	out := make([]Row, 0, len(roles))

	for _, r := range roles {
		expanded := r.ID == expand
		row := Row{
			Role:       r,
			Tags:       r.Permissions.QuickTags(expanded),
			Expanded:   expanded,
			Count:      r.Permissions.Count(),
			Percentage: r.Permissions.Percentage(),
		}

		if !expanded {
			row.HiddenTags = r.Permissions.HiddenTags()
		}

		out = append(out, row)
	}

	return out
}

func newMatrixView(m permission.Matrix) MatrixView {
	v := MatrixView{
		Count:      m.Count(),
		Max:        permission.MaxCount(),
		Percentage: m.Percentage(),
	}

	for _, a := range permission.Actions() {
		v.Columns = append(v.Columns, Column{Action: a, Label: a.Label(), Full: m.ColumnFull(a)})
	}

	for _, s := range permission.Sections() {
		row := SectionRow{Section: s, Label: s.Label(), State: m.SectionState(s)}

		for _, a := range permission.Actions() {
			row.Cells = append(row.Cells, Cell{Action: a, Key: permission.Key(s, a), Checked: m.Has(s, a)})
		}

		v.Rows = append(v.Rows, row)
	}

	return v
}
