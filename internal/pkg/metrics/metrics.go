// Package metrics defines and registers the custom Prometheus metrics of the
// news API. It is the single source of truth for metric names, labels, and
// help strings. HTTP request metrics come from echoprometheus and are not
// declared here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsroom"

// ── Article metrics ───────────────────────────────────────────────────────────

// ArticlesCreatedTotal counts newly created articles.
// Labels:
//   - category: one of the fixed section slugs (e.g. "sports")
//   - status: the initial status, "draft" or "published"
var ArticlesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "articles_created_total",
		Help:      "Total number of articles created, by category and initial status.",
	},
	[]string{"category", "status"},
)

// ArticleViewsTotal counts view-counter increments on published articles.
var ArticleViewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "article_views_total",
		Help:      "Total number of counted article views, by category.",
	},
	[]string{"category"},
)

// ArticleEngagementTotal counts reader interactions.
// Label:
//   - action: "comment", "like" or "unlike"
var ArticleEngagementTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "article_engagement_total",
		Help:      "Total number of comments, likes and unlikes.",
	},
	[]string{"action"},
)

// ── Media metrics ─────────────────────────────────────────────────────────────

// ImageUploadsTotal counts upload attempts.
// Label:
//   - result: "ok", "rejected" (bad input) or "failed" (media host error)
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of image uploads, by result.",
	},
	[]string{"result"},
)

// ImageCleanupFailuresTotal counts best-effort image deletions that failed.
var ImageCleanupFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanup_failures_total",
		Help:      "Total number of superseded or orphaned images that could not be deleted.",
	},
)

// ImageUploadBytes observes the stored size of uploaded images.
var ImageUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_upload_bytes",
		Help:      "Size of stored images after resizing.",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 6), // 16KiB .. 16MiB
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login outcomes.
// Label:
//   - result: "ok", "invalid_credentials", "deactivated" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successful self-registrations, by role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created through registration.",
	},
	[]string{"role"},
)

// EmailVerificationsTotal counts deliverability checks.
// Labels:
//   - provider: "static", "cache", "abstract", "eva", "mx" or "none"
//   - result: "valid" or "invalid"
var EmailVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_verifications_total",
		Help:      "Total number of email deliverability checks, by provider and result.",
	},
	[]string{"provider", "result"},
)

// RateLimitedTotal counts requests rejected by the auth rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Total number of auth requests rejected for exceeding the rate limit.",
	},
)
