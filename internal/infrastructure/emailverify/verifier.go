// Package emailverify decides whether an address used for registration is
// likely to receive mail. Static heuristics run first, then the Abstract API,
// then EVA, and finally an MX lookup on the domain.
package emailverify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/atjeh-times/news-api/internal/core/ports"
	"github.com/atjeh-times/news-api/internal/pkg/metrics"
	"github.com/atjeh-times/news-api/internal/pkg/rules"
)

const (
	DefaultAbstractURL = "https://emailvalidation.abstractapi.com/v1/"
	DefaultEVAURL      = "https://api.eva.pingutil.com/email"

	defaultTimeout  = 5 * time.Second
	minQualityScore = 0.5
)

const (
	ReasonInvalidFormat = rules.ReasonInvalidFormat
	ReasonDisposable    = rules.ReasonDisposable
	ReasonInvalidDomain = rules.ReasonInvalidDomain
	ReasonSuspicious    = rules.ReasonSuspicious
	ReasonUndeliverable = "This email appears to be invalid or not deliverable"
	ReasonLowQuality    = "This email appears to be suspicious or low quality"
	ProviderStatic      = "static"
	ProviderAbstract    = "abstract"
	ProviderEVA         = "eva"
	ProviderMX          = "mx"
	ProviderCache       = "cache"
	ProviderUnverified  = "unverified"
)

// Cache remembers verdicts between registrations.
type Cache interface {
	Get(ctx context.Context, email string) (ports.EmailVerdict, bool, error)
	Set(ctx context.Context, email string, v ports.EmailVerdict) error
}

type Config struct {
	AbstractAPIKey string
	AbstractURL    string
	EVAURL         string
	Timeout        time.Duration
}

// MXLookup resolves the mail exchangers of a domain.
type MXLookup func(ctx context.Context, domain string) ([]*net.MX, error)

type Verifier struct {
	cfg      Config
	client   *http.Client
	cache    Cache
	lookupMX MXLookup
	logger   zerolog.Logger
}

// New builds a Verifier. cache may be nil.
func New(cfg Config, cache Cache, logger zerolog.Logger) *Verifier {
	if cfg.AbstractURL == "" {
		cfg.AbstractURL = DefaultAbstractURL
	}
	if cfg.EVAURL == "" {
		cfg.EVAURL = DefaultEVAURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Verifier{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		cache:    cache,
		lookupMX: net.DefaultResolver.LookupMX,
		logger:   logger,
	}
}

// providerResult is what a single upstream check reports.
type providerResult struct {
	deliverable bool
	disposable  bool
	score       float64
}

// Verify never fails: when every provider is unreachable the address is
// accepted.
func (v *Verifier) Verify(ctx context.Context, email string) ports.EmailVerdict {
	email = strings.ToLower(strings.TrimSpace(email))

	if verdict, decided := StaticCheck(email); decided {
		v.record(verdict)
		return verdict
	}

	if v.cache != nil {
		cached, ok, err := v.cache.Get(ctx, email)
		if err != nil {
			v.logger.Warn().Err(err).Msg("email verdict cache unavailable")
		} else if ok {
			cached.Provider = ProviderCache
			v.record(cached)
			return cached
		}
	}

	verdict := v.verifyUpstream(ctx, email)
	v.record(verdict)

	if v.cache != nil && verdict.Provider != ProviderUnverified {
		if err := v.cache.Set(ctx, email, verdict); err != nil {
			v.logger.Warn().Err(err).Msg("failed to cache email verdict")
		}
	}
	return verdict
}

func (v *Verifier) verifyUpstream(ctx context.Context, email string) ports.EmailVerdict {
	if v.cfg.AbstractAPIKey != "" {
		res, err := v.checkAbstract(ctx, email)
		if err == nil {
			return judge(ProviderAbstract, res)
		}
		v.logger.Warn().Err(err).Msg("abstract email verification failed")
	}

	res, err := v.checkEVA(ctx, email)
	if err == nil {
		return judge(ProviderEVA, res)
	}
	v.logger.Warn().Err(err).Msg("eva email verification failed")

	domain := email[strings.LastIndex(email, "@")+1:]
	records, err := v.lookupMX(ctx, domain)
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && (dnsErr.IsTemporary || dnsErr.IsTimeout) {
		v.logger.Warn().Err(err).Str("domain", domain).Msg("mx lookup unavailable, accepting address unverified")
		return ports.EmailVerdict{Valid: true, Provider: ProviderUnverified}
	}
	hasMX := err == nil && len(records) > 0
	score := 0.1
	if hasMX {
		score = 0.5
	}
	return judge(ProviderMX, providerResult{deliverable: hasMX, score: score})
}

func judge(provider string, res providerResult) ports.EmailVerdict {
	switch {
	case res.disposable:
		return ports.EmailVerdict{Valid: false, Reason: ReasonDisposable, Provider: provider}
	case !res.deliverable:
		return ports.EmailVerdict{Valid: false, Reason: ReasonUndeliverable, Provider: provider}
	case res.score < minQualityScore:
		return ports.EmailVerdict{Valid: false, Reason: ReasonLowQuality, Provider: provider}
	}
	return ports.EmailVerdict{Valid: true, Provider: provider}
}

func (v *Verifier) checkAbstract(ctx context.Context, email string) (providerResult, error) {
	q := url.Values{"api_key": {v.cfg.AbstractAPIKey}, "email": {email}}
	body, err := v.get(ctx, v.cfg.AbstractURL+"?"+q.Encode())
	if err != nil {
		return providerResult{}, err
	}

	doc := gjson.ParseBytes(body)
	if !doc.Get("deliverability").Exists() {
		return providerResult{}, fmt.Errorf("abstract: unexpected response")
	}
	return providerResult{
		deliverable: doc.Get("deliverability").String() == "DELIVERABLE" && doc.Get("is_valid_format.value").Bool(),
		disposable:  doc.Get("is_disposable_email.value").Bool(),
		score:       doc.Get("quality_score").Float(),
	}, nil
}

func (v *Verifier) checkEVA(ctx context.Context, email string) (providerResult, error) {
	body, err := v.get(ctx, v.cfg.EVAURL+"?"+url.Values{"email": {email}}.Encode())
	if err != nil {
		return providerResult{}, err
	}

	doc := gjson.ParseBytes(body)
	if doc.Get("status").String() != "success" {
		return providerResult{}, fmt.Errorf("eva: %s", doc.Get("message").String())
	}

	deliverable := doc.Get("data.deliverable").Bool()
	score := 0.2
	if deliverable {
		score = 0.8
	}
	return providerResult{
		deliverable: deliverable,
		disposable:  doc.Get("data.disposable").Bool(),
		score:       score,
	}, nil
}

func (v *Verifier) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func (v *Verifier) record(verdict ports.EmailVerdict) {
	result := "valid"
	if !verdict.Valid {
		result = "rejected"
	}
	metrics.EmailVerificationsTotal.WithLabelValues(verdict.Provider, result).Inc()
}

// StaticCheck applies the offline heuristics. decided is false when the
// address passed them and needs an upstream check.
func StaticCheck(email string) (verdict ports.EmailVerdict, decided bool) {
	if reason := rules.ScreenEmail(email); reason != "" {
		return ports.EmailVerdict{Reason: reason, Provider: ProviderStatic}, true
	}
	return ports.EmailVerdict{}, false
}
