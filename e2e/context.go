package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ridelink/internal/app"
	"ridelink/internal/events"
	jwttoken "ridelink/internal/jwt_token"
	"ridelink/internal/platform/metrics"
	id "ridelink/pkg/domain"
)

const adminHandle = "admin"

var placeholder = regexp.MustCompile(`\{([a-z0-9_-]+)\}`)

// TestContext holds one in-process server and the state shared between steps.
type TestContext struct {
	Server           *httptest.Server
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	tokens *jwttoken.JWTService
	events *events.InMemoryStore
	actor  id.Handle
	saved  map[string]string

	clockMu sync.Mutex
	now     time.Time
}

// NewTestContext starts a fresh server with in-memory stores and a clock the
// scenario controls.
func NewTestContext() *TestContext {
	tc := &TestContext{
		tokens: jwttoken.NewJWTService("e2e-signing-key", "ridelink", time.Hour),
		events: events.NewInMemoryStore(),
		saved:  make(map[string]string),
		now:    time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
	}
	reg := prometheus.NewRegistry()
	a := app.New(app.Stores{}, app.Options{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Admin:         adminHandle,
		Tokens:        tc.tokens,
		Events:        events.NewPublisher(tc.events),
		Metrics:       metrics.New(reg),
		Gatherer:      reg,
		SendRateRPS:   100,
		SendRateBurst: 100,
		Clock:         tc.Now,
	})
	tc.Server = httptest.NewServer(a.Router)
	tc.HTTPClient = tc.Server.Client()
	tc.HTTPClient.Timeout = 10 * time.Second
	return tc
}

func (tc *TestContext) Close() {
	tc.Server.Close()
}

func (tc *TestContext) Now() time.Time {
	tc.clockMu.Lock()
	defer tc.clockMu.Unlock()
	return tc.now
}

// Advance moves the scenario clock forward.
func (tc *TestContext) Advance(d time.Duration) {
	tc.clockMu.Lock()
	defer tc.clockMu.Unlock()
	tc.now = tc.now.Add(d)
}

// As makes subsequent requests on behalf of handle. An empty handle sends no token.
func (tc *TestContext) As(handle string) {
	tc.actor = id.Handle(handle)
}

func (tc *TestContext) Remember(name, value string) {
	tc.saved[name] = value
}

func (tc *TestContext) Recall(name string) (string, error) {
	v, ok := tc.saved[name]
	if !ok {
		return "", fmt.Errorf("nothing remembered as %q", name)
	}
	return v, nil
}

// Expand replaces {name} placeholders with remembered values.
func (tc *TestContext) Expand(path string) (string, error) {
	var missing string
	out := placeholder.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := tc.saved[name]
		if !ok {
			missing = name
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("nothing remembered as %q", missing)
	}
	return out, nil
}

// Do sends a JSON request as the current actor and stores the response.
func (tc *TestContext) Do(method, path string, body any) error {
	path, err := tc.Expand(path)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.Server.URL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !tc.actor.IsNil() {
		token, err := tc.tokens.Issue(tc.actor, time.Now())
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response. Dotted paths
// descend into objects and numeric segments index arrays.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		switch node := data.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %s not found in response", field)
			}
			data = v
		case []any:
			var i int
			if _, err := fmt.Sscanf(part, "%d", &i); err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %s out of range in %s", part, field)
			}
			data = node[i]
		default:
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return data, nil
}

func (tc *TestContext) ResponseContains(text string) bool {
	return strings.Contains(string(tc.LastResponseBody), text)
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

// EventCount returns how many events of eventType were published.
func (tc *TestContext) EventCount(eventType string) int {
	return len(tc.events.ListByType(events.Type(eventType)))
}

func (tc *TestContext) TotalEvents() int {
	return len(tc.events.List())
}
