// Package notify delivers download request notifications to the external
// form submission endpoint.
//
// Delivery is best effort. A failed notification is reported through the
// returned Delivery, logged and counted, but never turned into an error for
// the caller: the document download does not depend on it.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/corpsite/corpsite/internal/catalog"
)

// Status is the outcome of a delivery attempt.
type Status string

const (
	// StatusDelivered means the endpoint answered.
	StatusDelivered Status = "delivered"
	// StatusFailed means the request did not reach the endpoint.
	StatusFailed Status = "failed"
)

// ErrNoEndpoint is reported when no endpoint is configured.
var ErrNoEndpoint = errors.New("notification endpoint is not configured")

var deliveries = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "download_notifications_total",
		Help: "Number of download request notifications, by delivery status.",
	},
	[]string{"status"},
)

// Request is what the endpoint is told about a download request.
type Request struct {
	Reference     string
	Kind          catalog.Kind
	ResourceID    string
	CompanyName   string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

// Fields returns the form fields posted to the endpoint, in a stable order.
func (r Request) Fields() [][2]string {
	return [][2]string{
		{"companyName", r.CompanyName},
		{"contactPerson", r.ContactPerson},
		{"email", r.Email},
		{"phone", r.Phone},
		{"address", r.Address},
		{r.Kind.IdentifierField(), r.ResourceID},
		{"reference", r.Reference},
	}
}

// Delivery is the result of a notification attempt.
type Delivery struct {
	Status     Status
	StatusCode int
	Err        error
}

// Delivered reports whether the endpoint was reached.
func (d Delivery) Delivered() bool {
	return d.Status == StatusDelivered
}

// Notifier sends download request notifications.
type Notifier interface {
	Notify(ctx context.Context, req Request) Delivery
}

// HTTPNotifier posts form encoded notifications.
type HTTPNotifier struct {
	endpoint string
	timeout  time.Duration
}

// NewHTTPNotifier returns a notifier for endpoint. A zero timeout means none.
func NewHTTPNotifier(endpoint string, timeout time.Duration) *HTTPNotifier {
	return &HTTPNotifier{endpoint: endpoint, timeout: timeout}
}

// Notify implements Notifier. Only transport failures count as failed; the
// response body is ignored.
func (n *HTTPNotifier) Notify(ctx context.Context, req Request) Delivery {
	d := n.send(ctx, req)

	deliveries.WithLabelValues(string(d.Status)).Inc()

	if d.Err != nil {
		log.Error().Err(d.Err).Str("reference", req.Reference).Str("resource", req.ResourceID).
			Msg("download request notification failed")
	} else {
		log.Info().Int("status_code", d.StatusCode).Str("reference", req.Reference).Str("resource", req.ResourceID).
			Msg("download request notification sent")
	}

	return d
}

func (n *HTTPNotifier) send(ctx context.Context, req Request) Delivery {
	if n.endpoint == "" {
		return Delivery{Status: StatusFailed, Err: ErrNoEndpoint}
	}

	if err := ctx.Err(); err != nil {
		return Delivery{Status: StatusFailed, Err: err}
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)

	for _, kv := range req.Fields() {
		args.Set(kv[0], kv[1])
	}

	agent := fiber.Post(n.endpoint).Form(args)
	if n.timeout > 0 {
		agent = agent.Timeout(n.timeout)
	}

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return Delivery{Status: StatusFailed, Err: errors.Join(errs...)}
	}

	return Delivery{Status: StatusDelivered, StatusCode: code}
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, req Request) Delivery

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, req Request) Delivery {
	return f(ctx, req)
}
