package discover_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/ocg/pkg/discover"
	"github.com/pthm/ocg/pkg/openrpc"
)

const endpoint = "http://localhost:5000/api/v1/"

const minimalDoc = `{
	"openrpc": "1.2.6",
	"info": {"title": "Calc", "version": "0.1.0"},
	"methods": [
		{"name": "add", "params": [
			{"name": "a", "required": true, "schema": {"type": "integer"}},
			{"name": "b", "required": true, "schema": {"type": "integer"}}
		], "result": {"name": "sum", "schema": {"type": "integer"}}}
	]
}`

// echoResponder answers rpc.discover with result, echoing the request id.
func echoResponder(t *testing.T, result string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		var body struct {
			JSONRPC string `json:"jsonrpc"`
			ID      string `json:"id"`
			Method  string `json:"method"`
			Params  []any  `json:"params"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		assert.Equal(t, "2.0", body.JSONRPC)
		assert.Equal(t, discover.RPCDiscover, body.Method)
		assert.NotNil(t, body.Params)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		resp := `{"jsonrpc":"2.0","id":"` + body.ID + `","result":` + result + `}`
		return httpmock.NewStringResponse(http.StatusOK, resp), nil
	}
}

func newMockClient() (*http.Client, *httpmock.MockTransport) {
	mt := httpmock.NewMockTransport()
	return &http.Client{Transport: mt}, mt
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{url: "http://localhost:5000/api/v1/", want: true},
		{url: "https://example.com/rpc", want: true},
		{url: "./openrpc.json", want: false},
		{url: "openrpc.yaml", want: false},
		{url: "/abs/http://thing", want: false},
		{url: "HTTP://example.com", want: false},
		{url: "ftp://example.com", want: false},
		{url: "bad", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, discover.IsRemote(tt.url))
		})
	}
}

func TestDiscover_Success(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint, echoResponder(t, minimalDoc))

	doc, err := discover.Discover(context.Background(), endpoint, discover.WithHTTPClient(client))
	require.NoError(t, err)
	assert.Equal(t, "Calc", doc.Info.Title)
	assert.Equal(t, []string{"add"}, doc.MethodNames())
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestDiscover_SendsHeaders(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
		return echoResponder(t, minimalDoc)(req)
	})

	_, err := discover.Discover(context.Background(), endpoint,
		discover.WithHTTPClient(client),
		discover.WithHeader("Authorization", "Bearer token"),
	)
	require.NoError(t, err)
}

func TestDiscover_RPCError(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":null,"error":{"code":-32601,"message":"Method not found"}}`))

	_, err := discover.Discover(context.Background(), endpoint, discover.WithHTTPClient(client))
	require.Error(t, err)
	assert.True(t, discover.IsRPCErr(err))

	var rpcErr *discover.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
	assert.Equal(t, "Method not found", rpcErr.Message)
}

func TestDiscover_HTTPStatus(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint, httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	_, err := discover.Discover(context.Background(), endpoint, discover.WithHTTPClient(client))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestDiscover_MismatchedID(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":"other","result":`+minimalDoc+`}`))

	_, err := discover.Discover(context.Background(), endpoint, discover.WithHTTPClient(client))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match request id")
}

func TestDiscover_MissingResult(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint, echoResponder(t, "null"))

	_, err := discover.Discover(context.Background(), endpoint, discover.WithHTTPClient(client))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no result")
}

func TestDiscover_MalformedBody(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint, httpmock.NewStringResponder(http.StatusOK, "<html>"))

	_, err := discover.Discover(context.Background(), endpoint, discover.WithHTTPClient(client))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestDiscover_InvalidDocument(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint, echoResponder(t, `{"openrpc":"1.2.6","methods":[]}`))

	_, err := discover.Discover(context.Background(), endpoint, discover.WithHTTPClient(client))
	require.Error(t, err)
	assert.True(t, openrpc.IsInvalidDocumentErr(err))
}

func TestDiscover_Timeout(t *testing.T) {
	client, mt := newMockClient()
	mt.RegisterResponder(http.MethodPost, endpoint, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	_, err := discover.Discover(context.Background(), endpoint,
		discover.WithHTTPClient(client),
		discover.WithTimeout(10*time.Millisecond),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openrpc.json")
	require.NoError(t, os.WriteFile(path, []byte(minimalDoc), 0o644))

	doc, err := discover.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Calc", doc.Info.Title)
}

func TestFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openrpc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openrpc: 1.2.6
info:
  title: Calc
  version: 0.1.0
methods:
  - name: add
    params:
      - name: a
        schema:
          type: integer
    result:
      name: sum
      schema:
        type: integer
`), 0o644))

	doc, err := discover.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", doc.Info.Version)
	assert.Equal(t, openrpc.Types{"integer"}, doc.Methods[0].Result.Schema.Type)
}

func TestFromFile_Missing(t *testing.T) {
	_, err := discover.FromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Dispatch(t *testing.T) {
	t.Run("local path never touches the network", func(t *testing.T) {
		client, mt := newMockClient()
		path := filepath.Join(t.TempDir(), "doc.json")
		require.NoError(t, os.WriteFile(path, []byte(minimalDoc), 0o644))

		_, err := discover.Load(context.Background(), path, discover.WithHTTPClient(client))
		require.NoError(t, err)
		assert.Equal(t, 0, mt.GetTotalCallCount())
	})

	t.Run("http url is discovered", func(t *testing.T) {
		client, mt := newMockClient()
		mt.RegisterResponder(http.MethodPost, endpoint, echoResponder(t, minimalDoc))

		_, err := discover.Load(context.Background(), endpoint, discover.WithHTTPClient(client))
		require.NoError(t, err)
		assert.Equal(t, 1, mt.GetTotalCallCount())
	})
}
