package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"stockfolio/internal/marketdata"
	"stockfolio/internal/marketdata/upstream"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestQuote_MapsLogicalFields(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("token"))
		require.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		writeJSON(w, http.StatusOK, `{"c":175.5,"d":1.2,"dp":0.69,"h":176.1,"l":173.8,"o":174.0,"pc":174.3,"t":1714000000}`)
	})

	c := upstream.New("test-key", upstream.WithBaseURL(srv.URL))
	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", q.Symbol)
	require.InEpsilon(t, 175.5, q.CurrentPrice, 1e-9)
	require.InEpsilon(t, 176.1, q.HighPrice, 1e-9)
	require.InEpsilon(t, 173.8, q.LowPrice, 1e-9)
	require.InEpsilon(t, 174.0, q.OpenPrice, 1e-9)
	require.InEpsilon(t, 174.3, q.PreviousClose, 1e-9)
	require.EqualValues(t, 1714000000, q.Timestamp)
}

func TestQuote_MissingPriceIsParseError(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	c := upstream.New("k", upstream.WithBaseURL(srv.URL))
	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	require.Equal(t, marketdata.KindParse, marketdata.KindOf(err))
}

func TestQuote_MalformedBodyIsParseError(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"c": not json`)
	})

	c := upstream.New("k", upstream.WithBaseURL(srv.URL))
	_, err := c.Quote(context.Background(), "MSFT")
	require.Error(t, err)
	require.Equal(t, marketdata.KindParse, marketdata.KindOf(err))
}

func TestQuote_StatusClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		kind   marketdata.Kind
	}{
		{http.StatusUnauthorized, marketdata.KindAuth},
		{http.StatusForbidden, marketdata.KindAuth},
		{http.StatusTooManyRequests, marketdata.KindRateLimited},
		{http.StatusNotFound, marketdata.KindNotFound},
		{http.StatusInternalServerError, marketdata.KindTransport},
	}
	for _, tc := range cases {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, `{"error":"nope"}`)
		})
		c := upstream.New("k", upstream.WithBaseURL(srv.URL))
		_, err := c.Quote(context.Background(), "AAPL")
		require.Error(t, err, "status %d", tc.status)
		require.Equal(t, tc.kind, marketdata.KindOf(err), "status %d", tc.status)
	}
}

func TestQuote_ConnectionFailureIsTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := upstream.New("k", upstream.WithBaseURL(srv.URL))
	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	require.Equal(t, marketdata.KindTransport, marketdata.KindOf(err))
}

func TestSearch_PreservesUpstreamOrder(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "AAP", r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, `{"count":2,"result":[
			{"symbol":"AAPL","description":"Apple Inc","type":"Common Stock"},
			{"symbol":"AAP","description":"Advance Auto Parts","type":"Common Stock"}]}`)
	})

	c := upstream.New("k", upstream.WithBaseURL(srv.URL))
	rs, err := c.Search(context.Background(), "AAP")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "AAPL", rs[0].Symbol)
	require.Equal(t, "Apple Inc", rs[0].Name)
	require.Equal(t, "AAP", rs[1].Symbol)
}

func TestSearch_EmptyResultIsValid(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"count":0,"result":[]}`)
	})

	c := upstream.New("k", upstream.WithBaseURL(srv.URL))
	rs, err := c.Search(context.Background(), "ZZZZ")
	require.NoError(t, err)
	require.Empty(t, rs)
}

func TestProfile_CommonStockGetsSectorAndIndustry(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stock/profile", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"name":"Apple Inc","ticker":"AAPL","type":"Common Stock",
			"sector":"Technology","industry":"Consumer Electronics","marketCap":2800000000000,
			"peRatio":29.4,"description":"Designs and sells consumer electronics."}`)
	})

	c := upstream.New("k", upstream.WithBaseURL(srv.URL))
	d, err := c.Profile(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "Apple Inc", d.Name)
	require.Equal(t, "Technology", d.Sector)
	require.Equal(t, "Consumer Electronics", d.Industry)
	require.InEpsilon(t, 29.4, d.PERatio, 1e-9)
}

func TestProfile_NonCommonStockGetsSentinels(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"name":"SPDR S&P 500","ticker":"SPY","type":"ETF",
			"sector":"ignored","industry":"ignored"}`)
	})

	c := upstream.New("k", upstream.WithBaseURL(srv.URL))
	d, err := c.Profile(context.Background(), "SPY")
	require.NoError(t, err)
	require.Equal(t, marketdata.NotAvailable, d.Sector)
	require.Equal(t, marketdata.NotAvailable, d.Industry)
	require.Equal(t, marketdata.NotAvailable, d.Description)
}

func TestProfile_EmptyBodyIsNotFound(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	c := upstream.New("k", upstream.WithBaseURL(srv.URL))
	_, err := c.Profile(context.Background(), "NOPE")
	require.Error(t, err)
	require.Equal(t, marketdata.KindNotFound, marketdata.KindOf(err))
}
