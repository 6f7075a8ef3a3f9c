// Package document serves the public tender and contract catalogs and the
// CAPTCHA gated download request behind their Download buttons.
package document

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/catalog"
	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/db/controller/downloadrequest"
	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/request"
	"github.com/corpsite/corpsite/internal/web/handler"
	"github.com/corpsite/corpsite/internal/web/navigation"
	"github.com/corpsite/corpsite/internal/web/session"
)

const (
	// TemplateList is the catalog listing.
	TemplateList = "document/list"
	// TemplateRequest is the download request form.
	TemplateRequest = "document/request"
	// TemplateSuccess is the confirmation with the delayed download.
	TemplateSuccess = "document/success"

	// MsgInvalidForm is shown above a rejected request form.
	MsgInvalidForm = "Please correct the highlighted fields"
	// MsgNotDownloadable is shown for closed and restricted documents.
	MsgNotDownloadable = "This document is not available for download."
	// MsgNotFound is shown for unknown documents.
	MsgNotFound = "Document not found."

	auditTimeout = 5 * time.Second
)

// Row is a listing entry.
type Row struct {
	catalog.Resource
	Actions    []catalog.Action
	ViewURL    string
	RequestURL string
}

// Service is the public document handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	store catalog.Store
	slots *request.Slots
}

// Handler is the document handler.
var Handler = Service{}

// Path is the listing route of a catalog.
func Path(kind catalog.Kind) string {
	return handler.RootPath + string(kind) + "s"
}

// ResourcePath is the route prefix of a single resource.
func ResourcePath(kind catalog.Kind, identifier string) string {
	return Path(kind) + "/" + url.PathEscape(identifier)
}

// Init registers the routes of every catalog.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store catalog.Store, slots *request.Slots) {
	if app == nil || cfg == nil || db == nil || store == nil || slots == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.store = store
	s.slots = slots

	for _, kind := range catalog.Kinds() {
		app.Route(Path(kind), func(router fiber.Router) {
			router.Get(handler.RouterRootPath, s.list(kind))
			router.Get("/:id/view", s.view(kind))
			router.Get("/:id/request", s.open(kind))
			router.Post("/:id/request", s.submit(kind))
			router.Post("/:id/request/captcha", s.refresh(kind))
			router.Post("/:id/request/close", s.close(kind))
		})
	}
}

func (s *Service) list(kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nav := navigation.NewContext(kind.Label(), "catalog", string(kind)).
			AddBreadcrumb("Home", handler.RootPath, false).
			AddBreadcrumb(kind.Label(), Path(kind), true)

		all, err := s.store.Resources(c.UserContext(), kind)
		if err != nil {
			log.Error().Err(err).Str("kind", string(kind)).Msg("failed to load catalog")

			return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
				"Navigation": nav,
				"Kind":       kind,
				"Error":      "Failed to load documents",
			}, handler.PublicLayout)
		}

		filter := catalog.ParseFilter(kind, c.Query("q"), c.Query("status"), c.Query("year"))
		page := catalog.Paginate(filter.Apply(all), c.QueryInt("page", 1), s.cfg.Download.PageSize)

		rows := make([]Row, 0, len(page.Items))
		for _, r := range page.Items {
			rows = append(rows, Row{
				Resource:   r,
				Actions:    catalog.Actions(r),
				ViewURL:    ResourcePath(kind, r.Identifier) + "/view",
				RequestURL: ResourcePath(kind, r.Identifier) + "/request",
			})
		}

		return c.Render(TemplateList, fiber.Map{
			"Navigation":    nav,
			"Kind":          kind,
			"Rows":          rows,
			"Page":          page,
			"Filter":        filter,
			"Pager":         newPager(kind, filter, page),
			"StatusOptions": kind.StatusOptions(),
			"Years":         catalog.Years(all),
		}, handler.PublicLayout)
	}
}

// view redirects to the document for preview. Previews are never gated.
func (s *Service) view(kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := s.resource(c, kind)
		if err != nil {
			return s.notFound(c, kind, err)
		}

		return c.Redirect(res.DocumentURL)
	}
}

// open shows a fresh request form, discarding anything the visitor had open.
func (s *Service) open(kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := s.resource(c, kind)
		if err != nil {
			return s.notFound(c, kind, err)
		}

		visitor, err := session.Visitor(c)
		if err != nil {
			log.Error().Err(err).Msg("failed to resolve visitor")
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		w, err := s.slots.Open(visitor, res)
		if errors.Is(err, request.ErrNotDownloadable) {
			return s.renderRequest(c, fiber.StatusConflict, kind, request.Snapshot{Resource: res}, MsgNotDownloadable)
		}

		if err != nil {
			log.Error().Err(err).Str("resource", res.Identifier).Msg("failed to open download request")
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		return s.renderRequest(c, fiber.StatusOK, kind, w.Snapshot(), "")
	}
}

func (s *Service) submit(kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, res, err := s.openWorkflow(c, kind)
		if err != nil {
			return s.notFound(c, kind, err)
		}

		if w == nil {
			return c.Redirect(ResourcePath(kind, res.Identifier) + "/request")
		}

		var form request.Form
		if err = c.BodyParser(&form); err != nil {
			return s.renderRequest(c, fiber.StatusBadRequest, kind, w.Snapshot(), MsgInvalidForm)
		}

		outcome, err := w.Submit(c.UserContext(), form)
		if errors.Is(err, request.ErrNoOpenRequest) {
			return c.Redirect(ResourcePath(kind, res.Identifier) + "/request")
		}

		if err != nil {
			log.Error().Err(err).Str("resource", res.Identifier).Msg("failed to submit download request")
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !outcome.Accepted {
			return s.renderRequest(c, fiber.StatusBadRequest, kind, w.Snapshot(), MsgInvalidForm)
		}

		s.audit(c.UserContext(), outcome.Success)

		return s.renderSuccess(c, kind, outcome.Success)
	}
}

func (s *Service) refresh(kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, res, err := s.openWorkflow(c, kind)
		if err != nil {
			return s.notFound(c, kind, err)
		}

		if w == nil {
			return c.Redirect(ResourcePath(kind, res.Identifier) + "/request")
		}

		if _, err = w.RefreshCaptcha(); err != nil {
			return c.Redirect(ResourcePath(kind, res.Identifier) + "/request")
		}

		return s.renderRequest(c, fiber.StatusOK, kind, w.Snapshot(), "")
	}
}

func (s *Service) close(kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if visitor, err := session.Visitor(c); err == nil {
			s.slots.Close(visitor)
		}

		return c.Redirect(Path(kind))
	}
}

// openWorkflow returns the visitor's workflow if it is open for the resource
// named in the path. A nil workflow means the form has to be opened first.
func (s *Service) openWorkflow(c *fiber.Ctx, kind catalog.Kind) (*request.Workflow, catalog.Resource, error) {
	res, err := s.resource(c, kind)
	if err != nil {
		return nil, res, err
	}

	visitor, err := session.Visitor(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve visitor")
		return nil, res, nil
	}

	w, ok := s.slots.Get(visitor)
	if !ok {
		return nil, res, nil
	}

	snap := w.Snapshot()
	if snap.State != request.StateFormOpen || snap.Resource.Kind != kind || snap.Resource.Identifier != res.Identifier {
		return nil, res, nil
	}

	return w, res, nil
}

func (s *Service) resource(c *fiber.Ctx, kind catalog.Kind) (catalog.Resource, error) {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return catalog.Resource{}, catalog.ErrResourceNotFound
	}

	return s.store.Resource(c.UserContext(), kind, id) //nolint:wrapcheck
}

func (s *Service) notFound(c *fiber.Ctx, kind catalog.Kind, err error) error {
	status := fiber.StatusNotFound
	msg := MsgNotFound

	if !errors.Is(err, catalog.ErrResourceNotFound) {
		log.Error().Err(err).Str("kind", string(kind)).Msg("failed to load document")

		status = fiber.StatusInternalServerError
		msg = "Failed to load document"
	}

	return c.Status(status).Render(TemplateList, fiber.Map{
		"Navigation": navigation.NewContext(kind.Label(), "catalog", string(kind)),
		"Kind":       kind,
		"Error":      msg,
	}, handler.PublicLayout)
}

func (s *Service) renderRequest(c *fiber.Ctx, status int, kind catalog.Kind, snap request.Snapshot, errMsg string) error {
	nav := navigation.NewContext("Request "+snap.Resource.Title, "catalog", string(kind)).
		AddBreadcrumb("Home", handler.RootPath, false).
		AddBreadcrumb(kind.Label(), Path(kind), false).
		AddBreadcrumb(snap.Resource.Identifier, ResourcePath(kind, snap.Resource.Identifier)+"/request", true)

	question := ""
	if snap.State == request.StateFormOpen {
		question = snap.Challenge.Question()
	}

	return c.Status(status).Render(TemplateRequest, fiber.Map{
		"Navigation": nav,
		"Kind":       kind,
		"Request":    snap,
		"Question":   question,
		"ActionURL":  ResourcePath(kind, snap.Resource.Identifier) + "/request",
		"Error":      errMsg,
	}, handler.PublicLayout)
}

func (s *Service) renderSuccess(c *fiber.Ctx, kind catalog.Kind, success *request.Success) error {
	nav := navigation.NewContext("Request received", "catalog", string(kind)).
		AddBreadcrumb("Home", handler.RootPath, false).
		AddBreadcrumb(kind.Label(), Path(kind), false).
		AddBreadcrumb(success.Reference, "#", true)

	window := time.Until(success.ClosesAt)
	if window < 0 {
		window = 0
	}

	return c.Render(TemplateSuccess, fiber.Map{
		"Navigation":    nav,
		"Kind":          kind,
		"Success":       success,
		"DelayMillis":   success.Download.Delay.Milliseconds(),
		"CloseSeconds":  int(window.Round(time.Second).Seconds()),
		"ReturnURL":     Path(kind),
		"Notified":      success.Delivery.Delivered(),
		"DownloadURL":   success.Download.URL,
		"DownloadName":  success.Download.Filename,
		"SubmittedMail": success.Email,
	}, handler.PublicLayout)
}

// audit records the accepted request. Failures are logged only.
func (s *Service) audit(ctx context.Context, success *request.Success) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	form := success.Form
	rec := &models.DownloadRequest{
		Reference:        success.Reference,
		Kind:             string(success.Resource.Kind),
		ResourceID:       success.Resource.Identifier,
		ResourceTitle:    success.Resource.Title,
		CompanyName:      form.CompanyName,
		ContactPerson:    form.ContactPerson,
		Email:            success.Email,
		Phone:            form.Phone,
		Address:          form.Address,
		Notification:     string(success.Delivery.Status),
		NotifyStatusCode: success.Delivery.StatusCode,
	}

	if err := downloadrequest.Create(ctx, s.db, rec); err != nil {
		log.Error().Err(err).Str("reference", success.Reference).Msg("failed to record download request")
	}
}

// filterQuery encodes the active filter for pager links. The page is left
// out so that changing a filter starts on page 1.
func filterQuery(f catalog.Filter) string {
	v := url.Values{}

	if f.Query != "" {
		v.Set("q", f.Query)
	}

	if f.Status != "" && f.Status != catalog.StatusAll {
		v.Set("status", string(f.Status))
	}

	if f.Year != "" {
		v.Set("year", f.Year)
	}

	if len(v) == 0 {
		return ""
	}

	return v.Encode() + "&"
}

// PagerLink is a page bar entry with its target.
type PagerLink struct {
	catalog.PageLink
	URL string
}

// Pager is the page bar of a listing.
type Pager struct {
	Links   []PagerLink
	PrevURL string
	NextURL string
}

func newPager(kind catalog.Kind, f catalog.Filter, page catalog.Page[catalog.Resource]) Pager {
	var p Pager

	for _, l := range page.Links() {
		link := PagerLink{PageLink: l}
		if !l.Ellipsis {
			link.URL = pageURL(kind, f, l.Number)
		}

		p.Links = append(p.Links, link)
	}

	if page.HasPrev() {
		p.PrevURL = pageURL(kind, f, page.PrevPage())
	}

	if page.HasNext() {
		p.NextURL = pageURL(kind, f, page.NextPage())
	}

	return p
}

func pageURL(kind catalog.Kind, f catalog.Filter, page int) string {
	return Path(kind) + "?" + filterQuery(f) + "page=" + strconv.Itoa(page)
}
