package emailverify

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atjeh-times/news-api/internal/core/ports"
)

type memoryCache struct {
	items map[string]ports.EmailVerdict
	gets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]ports.EmailVerdict)}
}

func (c *memoryCache) Get(_ context.Context, email string) (ports.EmailVerdict, bool, error) {
	c.gets++
	v, ok := c.items[email]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, email string, v ports.EmailVerdict) error {
	c.items[email] = v
	return nil
}

func jsonServer(t *testing.T, body string, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mx(records int, err error) MXLookup {
	return func(context.Context, string) ([]*net.MX, error) {
		out := make([]*net.MX, records)
		for i := range out {
			out[i] = &net.MX{Host: "mx.mail.io.", Pref: 10}
		}
		return out, err
	}
}

func TestStaticCheck(t *testing.T) {
	cases := []struct {
		email  string
		reason string
	}{
		{"not-an-email", ReasonInvalidFormat},
		{"reporter@mailinator.com", ReasonDisposable},
		{"reporter@myfakemail.com", ReasonInvalidDomain},
		{"tester@newsroom.io", ReasonSuspicious},
		{"12345678@newsroom.io", ReasonSuspicious},
		{"john.doe@newsroom.io", ReasonSuspicious},
		{"qwerty@newsroom.io", ReasonSuspicious},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			v, decided := StaticCheck(tc.email)
			require.True(t, decided)
			assert.False(t, v.Valid)
			assert.Equal(t, tc.reason, v.Reason)
			assert.Equal(t, ProviderStatic, v.Provider)
		})
	}

	_, decided := StaticCheck("maria.lopez@newsroom.io")
	assert.False(t, decided)
}

func TestVerify_AbstractDeliverable(t *testing.T) {
	abstract := jsonServer(t, `{"deliverability":"DELIVERABLE","quality_score":"0.90","is_valid_format":{"value":true},"is_disposable_email":{"value":false}}`, nil)
	evaHits := 0
	eva := jsonServer(t, `{"status":"success","data":{"deliverable":false}}`, &evaHits)

	v := New(Config{AbstractAPIKey: "k", AbstractURL: abstract.URL, EVAURL: eva.URL}, nil, zerolog.Nop())
	got := v.Verify(context.Background(), "maria.lopez@newsroom.io")

	assert.True(t, got.Valid)
	assert.Equal(t, ProviderAbstract, got.Provider)
	assert.Zero(t, evaHits)
}

func TestVerify_AbstractDisposable(t *testing.T) {
	abstract := jsonServer(t, `{"deliverability":"DELIVERABLE","quality_score":0.9,"is_valid_format":{"value":true},"is_disposable_email":{"value":true}}`, nil)

	v := New(Config{AbstractAPIKey: "k", AbstractURL: abstract.URL, EVAURL: failingServer(t).URL}, nil, zerolog.Nop())
	got := v.Verify(context.Background(), "maria.lopez@newsroom.io")

	assert.False(t, got.Valid)
	assert.Equal(t, ReasonDisposable, got.Reason)
}

func TestVerify_FallsBackToEVA(t *testing.T) {
	eva := jsonServer(t, `{"status":"success","data":{"deliverable":false,"disposable":false}}`, nil)

	v := New(Config{AbstractAPIKey: "k", AbstractURL: failingServer(t).URL, EVAURL: eva.URL}, nil, zerolog.Nop())
	got := v.Verify(context.Background(), "maria.lopez@newsroom.io")

	assert.False(t, got.Valid)
	assert.Equal(t, ProviderEVA, got.Provider)
	assert.Equal(t, ReasonUndeliverable, got.Reason)
}

func TestVerify_FallsBackToMX(t *testing.T) {
	v := New(Config{EVAURL: failingServer(t).URL}, nil, zerolog.Nop())

	v.lookupMX = mx(1, nil)
	got := v.Verify(context.Background(), "maria.lopez@newsroom.io")
	assert.True(t, got.Valid)
	assert.Equal(t, ProviderMX, got.Provider)

	v.lookupMX = mx(0, &net.DNSError{Err: "no such host", IsNotFound: true})
	got = v.Verify(context.Background(), "maria.lopez@nowhere.io")
	assert.False(t, got.Valid)
	assert.Equal(t, ReasonUndeliverable, got.Reason)
}

func TestVerify_PermissiveWhenDNSUnavailable(t *testing.T) {
	cache := newMemoryCache()
	v := New(Config{EVAURL: failingServer(t).URL}, cache, zerolog.Nop())
	v.lookupMX = mx(0, &net.DNSError{Err: "i/o timeout", IsTimeout: true})

	got := v.Verify(context.Background(), "maria.lopez@newsroom.io")

	assert.True(t, got.Valid)
	assert.Equal(t, ProviderUnverified, got.Provider)
	assert.Empty(t, cache.items)
}

func TestVerify_UsesCache(t *testing.T) {
	evaHits := 0
	eva := jsonServer(t, `{"status":"success","data":{"deliverable":true,"disposable":false}}`, &evaHits)
	cache := newMemoryCache()
	v := New(Config{EVAURL: eva.URL}, cache, zerolog.Nop())

	first := v.Verify(context.Background(), "Maria.Lopez@newsroom.io")
	second := v.Verify(context.Background(), "maria.lopez@newsroom.io")

	assert.True(t, first.Valid)
	assert.True(t, second.Valid)
	assert.Equal(t, ProviderCache, second.Provider)
	assert.Equal(t, 1, evaHits)
}

func TestVerify_StaticRejectionSkipsUpstream(t *testing.T) {
	cache := newMemoryCache()
	v := New(Config{}, cache, zerolog.Nop())
	v.lookupMX = func(context.Context, string) ([]*net.MX, error) {
		return nil, errors.New("should not be called")
	}

	got := v.Verify(context.Background(), "someone@yopmail.com")

	assert.False(t, got.Valid)
	assert.Zero(t, cache.gets)
}
