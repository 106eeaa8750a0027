package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext holds shared state for a scenario: the target deployment,
// the last HTTP response, and values captured from earlier steps.
type TestContext struct {
	BaseURL     string
	AdminSecret string

	client *http.Client

	lastStatus int
	lastBody   []byte

	// vars captures ids from responses (e.g. the paused flow id) so later
	// steps can reference them.
	vars map[string]string
}

func NewTestContext(baseURL, adminSecret string) *TestContext {
	return &TestContext{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AdminSecret: adminSecret,
		client:      &http.Client{Timeout: 10 * time.Second},
		vars:        map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.vars = map[string]string{}
}

func (tc *TestContext) SetVar(key, value string) { tc.vars[key] = value }
func (tc *TestContext) Var(key string) string    { return tc.vars[key] }
func (tc *TestContext) LastStatus() int          { return tc.lastStatus }
func (tc *TestContext) LastBody() []byte         { return tc.lastBody }

// AdminToken mints a short-lived admin JWT the way the deployment's
// admin middleware expects.
func (tc *TestContext) AdminToken() (string, error) {
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(5 * time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.AdminSecret))
}

func (tc *TestContext) Do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	return nil
}

func (tc *TestContext) POST(path string, body any, headers map[string]string) error {
	return tc.Do(http.MethodPost, path, body, headers)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.Do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.Do(http.MethodDelete, path, nil, headers)
}

// GetResponseField resolves a dotted path ("record.state") in the last
// JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var decoded any
	if err := json.Unmarshal(tc.lastBody, &decoded); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}

	current := decoded
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response", field)
		}
	}
	return current, nil
}

// ResponseList resolves a top-level field of the last response as a list
// of objects (list endpoints wrap their items: {"records": [...]}).
func (tc *TestContext) ResponseList(field string) ([]map[string]any, error) {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return nil, err
	}
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not an array", field)
	}
	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q contains a non-object entry", field)
		}
		items = append(items, obj)
	}
	return items, nil
}
