package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpsite/corpsite/internal/catalog"
)

func testRequest() Request {
	return Request{
		Reference:     "REF123",
		Kind:          catalog.KindTender,
		ResourceID:    "T-2024-001",
		CompanyName:   "Acme Ltd",
		ContactPerson: "Jane Doe",
		Email:         "jane@acme.test",
		Phone:         "+1 555 0100",
		Address:       "1 Main St",
	}
}

func TestHTTPNotifierPostsForm(t *testing.T) {
	received := make(chan url.Values, 1)
	contentType := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType <- r.Header.Get("Content-Type")

		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}

		received <- r.PostForm

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewHTTPNotifier(srv.URL, time.Second).Notify(context.Background(), testRequest())
	require.NoError(t, d.Err)
	assert.True(t, d.Delivered())
	assert.Equal(t, http.StatusAccepted, d.StatusCode)

	assert.Contains(t, <-contentType, "application/x-www-form-urlencoded")

	form := <-received
	assert.Equal(t, "T-2024-001", form.Get("tenderId"))
	assert.Equal(t, "Acme Ltd", form.Get("companyName"))
	assert.Equal(t, "Jane Doe", form.Get("contactPerson"))
	assert.Equal(t, "jane@acme.test", form.Get("email"))
	assert.Equal(t, "+1 555 0100", form.Get("phone"))
	assert.Equal(t, "1 Main St", form.Get("address"))
	assert.Equal(t, "REF123", form.Get("reference"))
}

func TestHTTPNotifierServerErrorStillDelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewHTTPNotifier(srv.URL, time.Second).Notify(context.Background(), testRequest())
	assert.True(t, d.Delivered())
	assert.Equal(t, http.StatusInternalServerError, d.StatusCode)
}

func TestHTTPNotifierNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	d := NewHTTPNotifier(endpoint, time.Second).Notify(context.Background(), testRequest())
	assert.Equal(t, StatusFailed, d.Status)
	assert.Error(t, d.Err)
}

func TestHTTPNotifierNoEndpoint(t *testing.T) {
	d := NewHTTPNotifier("", 0).Notify(context.Background(), testRequest())
	assert.Equal(t, StatusFailed, d.Status)
	assert.ErrorIs(t, d.Err, ErrNoEndpoint)
}

func TestHTTPNotifierCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewHTTPNotifier("http://127.0.0.1:1", 0).Notify(ctx, testRequest())
	assert.ErrorIs(t, d.Err, context.Canceled)
}

func TestContractIdentifierField(t *testing.T) {
	req := testRequest()
	req.Kind = catalog.KindContract
	req.ResourceID = "Supplier Code of Conduct"

	fields := map[string]string{}
	for _, kv := range req.Fields() {
		fields[kv[0]] = kv[1]
	}

	assert.Equal(t, "Supplier Code of Conduct", fields["resourceTitle"])
	assert.NotContains(t, fields, "tenderId")
}
