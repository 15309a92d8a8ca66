package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func serveMenu(t *testing.T, status int, body string) *HTTPMenuSource {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewHTTPMenuSource(srv.URL, 5*time.Second)
}

func TestHTTPMenuSource_FetchMenu(t *testing.T) {
	src := serveMenu(t, http.StatusOK, `{"menu":[
		{"name":"Greek Salad","price":"12.99","description":"Crispy","image":"greekSalad.jpg","category":"starters"},
		{"name":"Bruschetta","price":7.99,"image":"bruschetta.jpg","category":"starters"},
		{"name":"Mystery","price":"free"},
		{"name":"Void","price":"NaN"},
		{"name":"Endless","price":"Inf"},
		{"name":"Forever","price":"-Infinity"},
		{"name":"Refund","price":-3}
	]}`)

	got, err := src.FetchMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, "Greek Salad", got[0].Name)
	assert.Equal(t, RemotePrice(12.99), got[0].Price)
	assert.Equal(t, RemotePrice(7.99), got[1].Price)
	assert.Equal(t, "", got[1].Description)
	for _, it := range got[2:] {
		assert.Equal(t, RemotePrice(0), it.Price, it.Name)
	}
}

func TestMenuLoader_NonFinitePricesStoredAsZero(t *testing.T) {
	src := serveMenu(t, http.StatusOK, `{"menu":[
		{"name":"A","price":"NaN","category":"mains"},
		{"name":"B","price":"Inf","category":"mains"}
	]}`)
	l := NewMenuLoader(newTestMenuStore(t), src, WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	first := l.Load(ctx)
	require.Len(t, first, 2)
	second := l.Load(ctx)
	assert.Equal(t, first, second)
	for _, it := range second {
		assert.Equal(t, 0.0, it.Price, it.Name)
		assert.Contains(t, MenuCard(it, ""), "$0.00")
	}
}

func TestHTTPMenuSource_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"menu":[]}`},
		{"not found", http.StatusNotFound, "missing"},
		{"not json", http.StatusOK, "<html>oops</html>"},
		{"no menu array", http.StatusOK, `{"items":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := serveMenu(t, tt.status, tt.body)
			_, err := src.FetchMenu(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestHTTPMenuSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPMenuSource(url, time.Second).FetchMenu(context.Background())
	assert.Error(t, err)
}
