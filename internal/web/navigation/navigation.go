// Package navigation provides utilities for managing navigation state and breadcrumbs.
package navigation

import "github.com/corpsite/corpsite/internal/permission"

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// MenuItem is an entry of the admin sidebar.
type MenuItem struct {
	Title   string
	URL     string
	Section permission.Section
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
	Menu          []MenuItem
}

var adminMenu = []MenuItem{ //nolint:gochecknoglobals
	{Title: "Dashboard", URL: "/dashboard", Section: permission.SectionDashboard},
	{Title: "Users", URL: "/admin/users", Section: permission.SectionUsers},
	{Title: "Roles & Permissions", URL: "/admin/roles", Section: permission.SectionUsers},
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// WithMenu fills the sidebar with the admin entries the matrix may view.
func (c *Context) WithMenu(m permission.Matrix) *Context {
	c.Menu = make([]MenuItem, 0, len(adminMenu))

	for _, item := range adminMenu {
		if m.Has(item.Section, permission.ActionView) {
			c.Menu = append(c.Menu, item)
		}
	}

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
