package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smallbiznis/mensaplan/internal/config"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const planFixture = `{
  "code": 200,
  "content": {
    "speiseplanTage": {
      "2025-01-14": {
        "datum": "14.01.2025",
        "feiertag": false,
        "tagesMenues": {
          "m2": {"menueNr": 2, "bezeichnung": "Menü 2", "menueText": "Gemüsecurry (A,G)", "gesperrt": false},
          "m1": {"menueNr": 1, "bezeichnung": "Menü 1", "menueText": "Schnitzel (A,C)[br](1,2)", "gesperrt": false}
        }
      },
      "2025-01-13": {
        "datum": "13.01.2025",
        "feiertag": true,
        "tagesMenues": {}
      }
    }
  }
}`

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	cfg := config.Config{Upstream: config.UpstreamConfig{
		RequestURL:   url,
		ReferrerURL:  "https://vendor.example/plan",
		MandantID:    "42",
		SpeiseplanNr: "7",
		Timeout:      time.Second,
	}}
	return NewClient(cfg, zap.NewNop())
}

func testRange() (time.Time, time.Time) {
	return time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
}

func TestFetchSendsCommandAndHeaders(t *testing.T) {
	var got requestBody
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("ETag", `"v2"`)
		_, _ = w.Write([]byte(planFixture))
	}))
	defer srv.Close()

	start, end := testRange()
	res, err := newTestClient(t, srv.URL).Fetch(context.Background(), FetchRequest{Start: start, End: end, ETag: `"v1"`})
	require.NoError(t, err)

	assert.Equal(t, "speiseplan/mandantAPI_1_5", got.Command)
	assert.Equal(t, "web", got.Client)
	assert.Equal(t, requestParameter{MandantID: "42", SpeiseplanNr: "7", Von: "2025-01-13", Bis: "2025-01-17"}, got.Parameter)
	assert.Equal(t, `"v1"`, headers.Get("If-None-Match"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "https://vendor.example/plan", headers.Get("Referer"))

	require.False(t, res.NotModified)
	assert.Equal(t, `"v2"`, res.ETag)
	require.NotNil(t, res.Payload)
	days := res.Payload.Content.SpeiseplanTage
	require.Len(t, days, 2)
	assert.Equal(t, "2025-01-14", days[0].Key)
	assert.Equal(t, "2025-01-13", days[1].Key)
	assert.True(t, days[1].Feiertag)

	menus := days[0].Menus()
	require.Len(t, menus, 2)
	assert.Equal(t, 1, menus[0].MenueNr)
	assert.Equal(t, "Menü 1", menus[0].Bezeichnung)
}

func TestFetchNotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	start, end := testRange()
	res, err := newTestClient(t, srv.URL).Fetch(context.Background(), FetchRequest{Start: start, End: end, ETag: "abc"})
	require.NoError(t, err)
	assert.True(t, res.NotModified)
	assert.Nil(t, res.Payload)
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	start, end := testRange()
	_, err := newTestClient(t, srv.URL).Fetch(context.Background(), FetchRequest{Start: start, End: end})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestFetchUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": {"speiseplanTage": "nope"}}`))
	}))
	defer srv.Close()

	start, end := testRange()
	_, err := newTestClient(t, srv.URL).Fetch(context.Background(), FetchRequest{Start: start, End: end})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	start, end := testRange()
	_, err := newTestClient(t, url).Fetch(context.Background(), FetchRequest{Start: start, End: end})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestFetchRequiresURL(t *testing.T) {
	start, end := testRange()
	_, err := newTestClient(t, "").Fetch(context.Background(), FetchRequest{Start: start, End: end})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
