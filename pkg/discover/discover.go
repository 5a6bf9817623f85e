// Package discover acquires OpenRPC documents.
//
// A document is either fetched from a running server by calling the
// well-known rpc.discover JSON-RPC method, or read from a local JSON or YAML
// file. Load picks between the two based on the URL scheme:
//
//	doc, err := discover.Load(ctx, "http://localhost:5000/api/v1/")
//	doc, err := discover.Load(ctx, "./openrpc.json")
package discover

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"github.com/pthm/ocg/pkg/openrpc"
)

// RPCDiscover is the service discovery method defined by OpenRPC.
const RPCDiscover = "rpc.discover"

// DefaultTimeout bounds a single discovery request.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps how much of a discovery response is read.
const maxResponseSize = 32 << 20

var remotePattern = regexp.MustCompile(`^https?://`)

// IsRemote reports whether url should be discovered over HTTP rather than
// read from disk. The match is case-sensitive.
func IsRemote(url string) bool {
	return remotePattern.MatchString(url)
}

// ErrRPC is wrapped by every error returned by the server in a JSON-RPC
// error member.
var ErrRPC = errors.New("discover: rpc error")

// IsRPCErr returns true if err is or wraps ErrRPC.
func IsRPCErr(err error) bool {
	return errors.Is(err, ErrRPC)
}

// RPCError is a JSON-RPC error object returned by the server.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *RPCError) Unwrap() error {
	return ErrRPC
}

type options struct {
	client  *http.Client
	timeout time.Duration
	headers http.Header
}

// Option configures Discover.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for discovery.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithTimeout bounds the discovery request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHeader adds a header to the discovery request.
func WithHeader(key, value string) Option {
	return func(o *options) { o.headers.Add(key, value) }
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Discover calls rpc.discover on the server at url and parses the returned
// document.
func Discover(ctx context.Context, url string, opts ...Option) (*openrpc.Document, error) {
	o := options{
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  RPCDiscover,
		Params:  []any{},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range o.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", RPCDiscover, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("calling %s: server returned status %d", RPCDiscover, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var rpcResp response
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	if !sameID(rpcResp.ID, id) {
		return nil, fmt.Errorf("response id %s does not match request id %q", string(rpcResp.ID), id)
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return nil, fmt.Errorf("response to %s has no result", RPCDiscover)
	}

	return openrpc.Parse(rpcResp.Result)
}

func sameID(raw json.RawMessage, id string) bool {
	var got string
	if err := json.Unmarshal(raw, &got); err != nil {
		return false
	}
	return got == id
}

// FromFile reads a local OpenRPC document. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func FromFile(path string) (*openrpc.Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", openrpc.ErrInvalidDocument, err)
		}
	}

	return openrpc.Parse(data)
}

// Load discovers url when it is an HTTP(S) URL and reads it from disk
// otherwise.
func Load(ctx context.Context, url string, opts ...Option) (*openrpc.Document, error) {
	if IsRemote(url) {
		return Discover(ctx, url, opts...)
	}
	return FromFile(url)
}
