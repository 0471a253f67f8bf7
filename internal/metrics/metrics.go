// Package metrics owns every custom Prometheus collector of the service.
// All collectors are registered on the default registry at import time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parkify"

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - role: admin, lessor or user
//   - result: success, invalid, locked
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts by role and outcome.",
	},
	[]string{"role", "result"},
)

// LockoutsTotal counts locks triggered by repeated failures.
var LockoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Login lockouts triggered, by role.",
	},
	[]string{"role"},
)

var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "User registrations by outcome (created, duplicate_phone, duplicate_email).",
	},
	[]string{"result"},
)

var ComplaintsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "complaints_submitted_total",
		Help:      "Complaints stored.",
	},
)

// ImageUploadsTotal counts parking-lot image uploads.
// Label:
//   - result: success, upload_failed, url_failed, update_failed
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Parking lot image uploads by outcome.",
	},
	[]string{"result"},
)

// OrphanedObjectsTotal counts objects that could not be removed from storage
// and now have no row pointing at them.
var OrphanedObjectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphaned_objects_total",
		Help:      "Storage objects left behind after a failed delete.",
	},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
