package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by kind and status.",
		},
		[]string{"kind", "status"},
	)

	logoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_logouts_total",
		Help: "Total number of successful logouts.",
	})

	singleUseRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_single_use_redemptions_total",
			Help: "Total number of verification and password reset redemptions by status.",
		},
		[]string{"kind", "status"},
	)

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_verifications_total",
			Help: "Total number of token verification attempts by type and status.",
		},
		[]string{"type", "status"},
	)
)

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
