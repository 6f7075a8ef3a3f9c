// Package catalog holds the downloadable document catalogs (tenders and
// contracts) and the filtering, pagination and action rules of their listings.
package catalog

import (
	"path"
	"regexp"
	"slices"
	"strings"
)

// Kind identifies a catalog.
type Kind string

const (
	// KindTender is the tender catalog.
	KindTender Kind = "tender"
	// KindContract is the contract and resource catalog.
	KindContract Kind = "contract"
)

// Status is the availability of a resource.
type Status string

const (
	// StatusAll disables the status filter.
	StatusAll Status = "All"
	// StatusOpen marks a tender that accepts document requests.
	StatusOpen Status = "Open"
	// StatusClosed marks a tender past its closing date.
	StatusClosed Status = "Closed"
	// StatusAvailable marks a contract document that may be downloaded.
	StatusAvailable Status = "Available"
	// StatusRestricted marks a contract document that may only be viewed.
	StatusRestricted Status = "Restricted"
)

// Action is an affordance offered for a resource in a listing.
type Action string

const (
	// ActionView previews the document, no gate.
	ActionView Action = "View"
	// ActionDownload starts the gated request workflow.
	ActionDownload Action = "Download"
)

// Resource is a downloadable document of a catalog.
type Resource struct {
	Kind          Kind
	Identifier    string // tender id or contract title
	Title         string
	Category      string
	Status        Status
	PublishedDate string // ISO date, YYYY-MM-DD
	ClosingDate   string // tenders only
	Location      string // tenders only
	FileSize      string
	DocumentURL   string
	Description   string
	Requirements  []string // tenders only
}

// Kinds lists all catalogs.
func Kinds() []Kind {
	return []Kind{KindTender, KindContract}
}

// Valid reports whether k is a known catalog.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds(), k)
}

// Statuses returns the statuses a resource of this kind may have.
func (k Kind) Statuses() []Status {
	switch k {
	case KindTender:
		return []Status{StatusOpen, StatusClosed}
	case KindContract:
		return []Status{StatusAvailable, StatusRestricted}
	default:
		return nil
	}
}

// StatusOptions returns the status filter values, StatusAll first.
func (k Kind) StatusOptions() []Status {
	return append([]Status{StatusAll}, k.Statuses()...)
}

// IdentifierField is the form field naming the resource in notifications.
func (k Kind) IdentifierField() string {
	if k == KindTender {
		return "tenderId"
	}

	return "resourceTitle"
}

// Label is the plural display name of the catalog.
func (k Kind) Label() string {
	if k == KindTender {
		return "Tenders"
	}

	return "Contracts"
}

// Downloadable reports whether the gated download is offered.
func (r Resource) Downloadable() bool {
	return r.Status == StatusOpen || r.Status == StatusAvailable
}

// Year returns the 4 digit year of the published date, or "".
func (r Resource) Year() string {
	if len(r.PublishedDate) < 4 { //nolint:mnd
		return ""
	}

	return r.PublishedDate[:4]
}

// Actions returns the listing affordances. Closed and restricted resources
// only offer View.
func Actions(r Resource) []Action {
	if r.Downloadable() {
		return []Action{ActionView, ActionDownload}
	}

	return []Action{ActionView}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename derives the suggested download filename from the identifier and
// the extension of the document URL (".pdf" when there is none).
func Filename(r Resource) string {
	ext := path.Ext(strings.SplitN(r.DocumentURL, "?", 2)[0]) //nolint:mnd
	if ext == "" || len(ext) > 6 {                            //nolint:mnd
		ext = ".pdf"
	}

	base := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(r.Identifier), "-")
	base = strings.Trim(base, "-.")

	if base == "" {
		base = "document"
	}

	return base + ext
}
