package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/gopanda/timestep"
)

const (
	// URLEnv is the environment variable holding the learner server URL
	URLEnv string = "GOPANDA_LEARNER_URL"

	// DefaultURL is used when no URL is configured
	DefaultURL string = "http://localhost:8080"

	// DefaultTimeout bounds each request to the learner server
	DefaultTimeout time.Duration = 30 * time.Second
)

// Client talks to a learner server over HTTP. All request and response
// bodies are JSON objects. Failed requests are answered with a non-2xx
// status and an object holding an "error" string.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
}

// NewClient returns a new Client for the server at baseURL. If baseURL
// is empty, the URL is read from URLEnv, falling back to DefaultURL. If
// timeout is not positive, DefaultTimeout is used.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = os.Getenv(URLEnv)
		if baseURL == "" {
			baseURL = DefaultURL
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log.Println("Using learner server", baseURL)

	return &Client{
		http:    &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// BaseURL returns the URL of the learner server
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request with a JSON body to path and returns the parsed
// response body. A nil body sends no body at all.
func (c *Client) Do(ctx context.Context, method, path string,
	body []byte) (gjson.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path,
		reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("do: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("do: %v %v: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("do: could not read response "+
			"to %v %v: %v", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return gjson.Result{}, fmt.Errorf("do: %v %v: %v: %v", method, path,
			resp.Status, msg)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("do: %v %v: invalid JSON response",
			method, path)
	}
	return gjson.ParseBytes(data), nil
}

// field is a path in a JSON object and the value to set there
type field struct {
	path  string
	value interface{}
}

// setFields sets each field in the JSON object json, in order
func setFields(json []byte, fields ...field) ([]byte, error) {
	var err error
	for _, f := range fields {
		json, err = sjson.SetBytes(json, f.path, f.value)
		if err != nil {
			return nil, fmt.Errorf("setFields: %v: %v", f.path, err)
		}
	}
	return json, nil
}

// setVec sets path in the JSON object json to the elements of v
func setVec(json []byte, path string, v mat.Vector) ([]byte, error) {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return sjson.SetBytes(json, path, data)
}

// setObservation sets path in the JSON object json to the
// goal-conditioned observation of a timestep:
//
//	{"observation": [...], "achieved_goal": [...], "desired_goal": [...]}
func setObservation(json []byte, path string, t ts.TimeStep) ([]byte,
	error) {
	if t.Observation == nil || t.AchievedGoal == nil || t.DesiredGoal == nil {
		return nil, fmt.Errorf("setObservation: timestep %v has no "+
			"goal-conditioned observation", t.Number)
	}

	var err error
	fields := []struct {
		key string
		vec *mat.VecDense
	}{
		{"observation", t.Observation},
		{"achieved_goal", t.AchievedGoal},
		{"desired_goal", t.DesiredGoal},
	}
	for _, field := range fields {
		json, err = setVec(json, path+"."+field.key, field.vec)
		if err != nil {
			return nil, fmt.Errorf("setObservation: %v", err)
		}
	}
	return json, nil
}

// vecOf returns the JSON array r as a vector
func vecOf(r gjson.Result) (*mat.VecDense, error) {
	if !r.IsArray() {
		return nil, fmt.Errorf("vecOf: expected an array, got %q", r.Raw)
	}

	elems := r.Array()
	if len(elems) == 0 {
		return nil, fmt.Errorf("vecOf: empty array")
	}
	data := make([]float64, len(elems))
	for i, e := range elems {
		if e.Type != gjson.Number {
			return nil, fmt.Errorf("vecOf: element %v is not a number", i)
		}
		data[i] = e.Float()
	}
	return mat.NewVecDense(len(data), data), nil
}
