package httpapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiet_hours_notifier/internal/app"
	domainEmail "quiet_hours_notifier/internal/domain/email"
	"quiet_hours_notifier/internal/domain/profile"
	"quiet_hours_notifier/internal/domain/schedule"
	"quiet_hours_notifier/internal/infra/httpapi"

	"github.com/sirupsen/logrus"
)

type stubBlockRepo struct {
	blocks  []*schedule.StudyBlock
	listErr error
}

func (r *stubBlockRepo) ListDue(_ context.Context, _, _ time.Time) ([]*schedule.StudyBlock, error) {
	return r.blocks, r.listErr
}

func (r *stubBlockRepo) MarkNotified(context.Context, string) error { return nil }

type stubProfileRepo struct{}

func (stubProfileRepo) GetByUserID(_ context.Context, userID string) (*profile.Profile, error) {
	return &profile.Profile{UserID: userID, Email: userID + "@example.com"}, nil
}

type stubMailer struct{}

func (stubMailer) Send(context.Context, domainEmail.Message) (string, error) {
	return "receipt-1", nil
}

func newTestServer(t *testing.T, repo *stubBlockRepo) *httpapi.Server {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	renderer, err := app.NewRenderer("from@example.com", "UTC")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	dispatch := app.NewDispatchService(repo, stubProfileRepo{}, stubMailer{}, renderer, l.WithField("component", "test"), app.DispatchOptions{
		Lookahead:   10 * time.Minute,
		CallTimeout: 5 * time.Second,
		Workers:     1,
	})
	return httpapi.NewServer(dispatch, l.WithField("component", "httpapi"), ":0")
}

func dueBlock() *schedule.StudyBlock {
	start := time.Now().UTC().Add(5 * time.Minute)
	return &schedule.StudyBlock{
		ID:        "b1",
		UserID:    "u1",
		Title:     "Reading",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestSendReminders_Success(t *testing.T) {
	srv := newTestServer(t, &stubBlockRepo{blocks: []*schedule.StudyBlock{dueBlock()}})

	req := httptest.NewRequest(http.MethodPost, "/jobs/send-reminders", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"message":"Email reminders processed successfully"`) {
		t.Errorf("body = %s, missing success message", body)
	}
	if !strings.Contains(body, `"processed":1`) {
		t.Errorf("body = %s, missing processed count", body)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestSendReminders_NothingDue(t *testing.T) {
	srv := newTestServer(t, &stubBlockRepo{})

	req := httptest.NewRequest(http.MethodGet, "/jobs/send-reminders", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"No reminders to send"`) {
		t.Errorf("body = %s, missing nothing-to-do message", rec.Body.String())
	}
}

func TestSendReminders_SelectorFailure(t *testing.T) {
	srv := newTestServer(t, &stubBlockRepo{listErr: errors.New("store unreachable")})

	req := httptest.NewRequest(http.MethodPost, "/jobs/send-reminders", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("body = %s, missing error field", rec.Body.String())
	}
}

func TestSendReminders_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, &stubBlockRepo{})

	req := httptest.NewRequest(http.MethodOptions, "/jobs/send-reminders", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight body = %q, want empty", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	allowHeaders := strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers"))
	for _, h := range []string{"authorization", "x-client-info", "apikey", "content-type"} {
		if !strings.Contains(allowHeaders, h) {
			t.Errorf("Access-Control-Allow-Headers = %q, missing %s", allowHeaders, h)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubBlockRepo{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
