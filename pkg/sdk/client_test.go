package sdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryktews/vue-storefront/pkg/integration"
)

type productParams struct {
	SKU string `json:"sku"`
}

type product struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func middlewareStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ct/getProduct", func(w http.ResponseWriter, r *http.Request) {
		var p productParams
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &p))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(product{SKU: p.SKU, Name: "Chair", Price: "49.00"})
	})
	mux.HandleFunc("POST /ct/secret", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"authentication required","code":"unauthorized"}`)
			return
		}
		io.WriteString(w, `{}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"no such integration or endpoint","code":"unknown_route"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCallDecodesTypedResult(t *testing.T) {
	srv := middlewareStub(t)
	c := New(srv.URL + "/")

	var out product
	err := c.Call(context.Background(), "ct", "getProduct", productParams{SKU: "A-1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, product{SKU: "A-1", Name: "Chair", Price: "49.00"}, out)
}

func TestCallDecodesErrorEnvelope(t *testing.T) {
	srv := middlewareStub(t)
	c := New(srv.URL)

	err := c.Call(context.Background(), "ghost", "anything", nil, nil)
	var ae *integration.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusNotFound, ae.Status)
	assert.Equal(t, "unknown_route", ae.Code)
	assert.Equal(t, "no such integration or endpoint", ae.Message)
}

func TestCallSendsStaticHeaders(t *testing.T) {
	srv := middlewareStub(t)

	err := New(srv.URL).Call(context.Background(), "ct", "secret", nil, nil)
	var ae *integration.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)

	c := New(srv.URL, WithHeader("Authorization", "Bearer tok"))
	assert.NoError(t, c.Call(context.Background(), "ct", "secret", nil, nil))
}

func TestCallStrictDecodeRejectsUnknownFields(t *testing.T) {
	srv := middlewareStub(t)
	c := New(srv.URL)

	var out struct {
		SKU string `json:"sku"`
	}
	err := c.Call(context.Background(), "ct", "getProduct", productParams{SKU: "A-1"}, &out)
	assert.Error(t, err, "response carries fields the caller's type does not declare")
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithHTTPDoerIsUsed(t *testing.T) {
	var gotURL string
	c := New("https://mw.example", WithHTTPDoer(doerFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		rec := httptest.NewRecorder()
		rec.WriteString(`{}`)
		return rec.Result(), nil
	})))

	require.NoError(t, c.Call(context.Background(), "ct", "getProduct", map[string]string{}, nil))
	assert.Equal(t, "https://mw.example/ct/getProduct", gotURL)
}

func TestTypedEndpoint(t *testing.T) {
	srv := middlewareStub(t)
	c := New(srv.URL)

	getProduct := Endpoint[productParams, product]{Integration: "ct", Name: "getProduct"}
	p, err := getProduct.Call(context.Background(), c, productParams{SKU: "B-2"})
	require.NoError(t, err)
	assert.Equal(t, "B-2", p.SKU)
	assert.Equal(t, "Chair", p.Name)
}
