package request

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/corpsite/corpsite/internal/captcha"
	"github.com/corpsite/corpsite/internal/catalog"
	"github.com/corpsite/corpsite/internal/notify"
	"github.com/corpsite/corpsite/internal/uniuri"
	"github.com/corpsite/corpsite/internal/validation"
)

// State is a step of the workflow.
type State int

const (
	// StateIdle means no request is in progress.
	StateIdle State = iota
	// StateFormOpen means the form is shown and waits for a submission.
	StateFormOpen
	// StateSubmitting means the notification is being sent.
	StateSubmitting
	// StateSuccess means the download was handed out.
	StateSuccess
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFormOpen:
		return "form-open"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Timing holds the fixed delays of the success panel.
type Timing struct {
	// DownloadDelay is the wait between showing success and starting the download.
	DownloadDelay time.Duration
	// DisplayWindow is how long the success panel stays before the workflow closes.
	DisplayWindow time.Duration
}

// DefaultTiming is used when Deps leave Timing zero.
var DefaultTiming = Timing{ //nolint:gochecknoglobals
	DownloadDelay: time.Second,
	DisplayWindow: 5 * time.Second, //nolint:mnd
}

// ChallengeGenerator creates CAPTCHA challenges.
type ChallengeGenerator interface {
	Generate() captcha.Challenge
}

// Deps are the collaborators of a workflow. Zero fields get defaults.
type Deps struct {
	Generator  ChallengeGenerator
	Notifier   notify.Notifier
	Clock      func() time.Time
	Timing     Timing
	References func() string
}

// Download tells the client which document to fetch and how to name it.
type Download struct {
	URL      string
	Filename string
	Delay    time.Duration
}

// Success is the confirmation shown after a valid submission.
type Success struct {
	Reference string
	Email     string
	Form      Form // trimmed submission, captcha answer cleared
	Resource  catalog.Resource
	Download  Download
	Delivery  notify.Delivery
	ClosesAt  time.Time
}

// Outcome is the result of a submission.
type Outcome struct {
	Accepted         bool
	Errors           FieldErrors
	CaptchaRefreshed bool
	Success          *Success
}

// Workflow is one visitor's download request. It is safe for concurrent use.
type Workflow struct {
	mu sync.Mutex

	deps      Deps
	validator *validator.Validate

	state     State
	resource  catalog.Resource
	form      Form
	challenge captcha.Challenge
	errors    FieldErrors
	success   *Success
}

// NewReference returns a short request reference code.
func NewReference() string {
	return uniuri.NewReference()
}

// New returns an idle workflow.
func New(deps Deps) *Workflow {
	if deps.Generator == nil {
		deps.Generator = captcha.NewGenerator()
	}

	if deps.Notifier == nil {
		deps.Notifier = notify.Func(func(context.Context, notify.Request) notify.Delivery {
			return notify.Delivery{Status: notify.StatusFailed, Err: notify.ErrNoEndpoint}
		})
	}

	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	if deps.Timing == (Timing{}) {
		deps.Timing = DefaultTiming
	}

	if deps.References == nil {
		deps.References = NewReference
	}

	return &Workflow{
		deps:      deps,
		validator: validation.New(),
		state:     StateIdle,
	}
}

// Open starts a request for resource with a fresh form and challenge,
// discarding whatever was in progress.
func (w *Workflow) Open(resource catalog.Resource) error {
	if !resource.Downloadable() {
		return ErrNotDownloadable
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.reset()
	w.resource = resource
	w.challenge = w.deps.Generator.Generate()
	w.state = StateFormOpen

	return nil
}

// RefreshCaptcha replaces the challenge of the open form.
func (w *Workflow) RefreshCaptcha() (captcha.Challenge, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.expire()

	if w.state != StateFormOpen {
		return captcha.Challenge{}, ErrNoOpenRequest
	}

	w.challenge = w.deps.Generator.Generate()
	delete(w.errors, FieldCaptchaAnswer)

	return w.challenge, nil
}

// Submit validates the form. Invalid input keeps the form open with field
// errors. A valid submission sends the notification and reaches Success no
// matter how the notification went.
func (w *Workflow) Submit(ctx context.Context, form Form) (Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.expire()

	if w.state != StateFormOpen {
		return Outcome{}, ErrNoOpenRequest
	}

	form = form.normalized()

	errs := FieldErrors{}
	if err := w.validator.Struct(form); err != nil {
		for field, msg := range validation.Fields(err, fieldLabels) {
			errs[field] = msg
		}
	}

	refreshed := false

	if err := w.challenge.Verify(form.CaptchaAnswer); err != nil {
		errs[FieldCaptchaAnswer] = err.Error()

		if errors.Is(err, captcha.ErrAnswerMismatch) {
			w.challenge = w.deps.Generator.Generate()
			refreshed = true
		}
	}

	form.CaptchaAnswer = ""
	w.form = form

	if len(errs) > 0 {
		w.errors = errs

		log.Debug().Str("resource", w.resource.Identifier).Int("errors", len(errs)).Bool("captcha_refreshed", refreshed).
			Msg("download request rejected")

		return Outcome{Errors: errs, CaptchaRefreshed: refreshed}, nil
	}

	w.errors = nil
	w.state = StateSubmitting

	ref := w.deps.References()
	delivery := w.deps.Notifier.Notify(ctx, notify.Request{
		Reference:     ref,
		Kind:          w.resource.Kind,
		ResourceID:    w.resource.Identifier,
		CompanyName:   form.CompanyName,
		ContactPerson: form.ContactPerson,
		Email:         form.Email,
		Phone:         form.Phone,
		Address:       form.Address,
	})

	now := w.deps.Clock()
	w.success = &Success{
		Reference: ref,
		Email:     form.Email,
		Form:      form,
		Resource:  w.resource,
		Download: Download{
			URL:      w.resource.DocumentURL,
			Filename: catalog.Filename(w.resource),
			Delay:    w.deps.Timing.DownloadDelay,
		},
		Delivery: delivery,
		ClosesAt: now.Add(w.deps.Timing.DisplayWindow),
	}
	w.state = StateSuccess

	log.Info().Str("reference", ref).Str("resource", w.resource.Identifier).
		Str("notification", string(delivery.Status)).Msg("download request accepted")

	success := *w.success

	return Outcome{Accepted: true, Success: &success}, nil
}

// Close returns to Idle and drops all transient state.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reset()
}

// State returns the current state. Success falls back to Idle once the
// display window has passed.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.expire()

	return w.state
}

// Snapshot is a consistent copy of the workflow for rendering.
type Snapshot struct {
	State     State
	Resource  catalog.Resource
	Form      Form
	Challenge captcha.Challenge
	Errors    FieldErrors
	Success   *Success
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.expire()

	snap := Snapshot{
		State:     w.state,
		Resource:  w.resource,
		Form:      w.form,
		Challenge: w.challenge,
		Errors:    FieldErrors{},
	}

	for k, v := range w.errors {
		snap.Errors[k] = v
	}

	if w.success != nil {
		s := *w.success
		snap.Success = &s
	}

	return snap
}

func (w *Workflow) expire() {
	if w.state == StateSuccess && w.success != nil && !w.deps.Clock().Before(w.success.ClosesAt) {
		w.reset()
	}
}

func (w *Workflow) reset() {
	w.state = StateIdle
	w.resource = catalog.Resource{}
	w.form = Form{}
	w.challenge = captcha.Challenge{}
	w.errors = nil
	w.success = nil
}
