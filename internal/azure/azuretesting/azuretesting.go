// Package azuretesting provides an in-process transport and credential for
// exercising Azure SDK clients without a network.
package azuretesting

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// FakeCredential hands out a static bearer token.
type FakeCredential struct{}

func (FakeCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// Handler answers one request.
type Handler func(req *http.Request) *http.Response

// MockSender is a policy.Transporter that routes requests to handlers by
// method and path, and records every request it sees.
type MockSender struct {
	mu       sync.Mutex
	routes   []route
	Requests []*http.Request
}

type route struct {
	method string
	match  func(*http.Request) bool
	h      Handler
}

// Handle registers h for requests with the given method whose URL path ends
// with suffix (case-insensitive).
func (s *MockSender) Handle(method, suffix string, h Handler) {
	s.HandleFunc(method, func(req *http.Request) bool {
		return strings.HasSuffix(strings.ToLower(req.URL.Path), strings.ToLower(suffix))
	}, h)
}

// HandleFunc registers h for requests accepted by match.
func (s *MockSender) HandleFunc(method string, match func(*http.Request) bool, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, route{method: method, match: match, h: h})
}

// Do implements policy.Transporter.
func (s *MockSender) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	routes := append([]route(nil), s.routes...)
	s.mu.Unlock()

	for _, r := range routes {
		if r.method == req.Method && r.match(req) {
			resp := r.h(req)
			resp.Request = req
			return resp, nil
		}
	}
	return nil, fmt.Errorf("unexpected request %s %s", req.Method, req.URL)
}

// Count returns how many recorded requests satisfy match.
func (s *MockSender) Count(match func(*http.Request) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, req := range s.Requests {
		if match(req) {
			n++
		}
	}
	return n
}

// NewResponseWithContent returns a 200 response carrying a JSON body.
func NewResponseWithContent(content string) *http.Response {
	return NewResponse(http.StatusOK, content, nil)
}

// NewResponseWithStatus returns an empty response with the given status.
func NewResponseWithStatus(status int) *http.Response {
	return NewResponse(status, "", nil)
}

// NewResponse builds a response. A non-empty body is served as JSON.
func NewResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	if body != "" && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

var (
	_ azcore.TokenCredential = FakeCredential{}
	_ policy.Transporter     = (*MockSender)(nil)
)
