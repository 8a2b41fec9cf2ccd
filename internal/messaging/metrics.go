package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	emailJobsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_email_jobs_dispatched_total",
		Help: "Email jobs handed to the delivery pipeline.",
	}, []string{"transport", "status"})

	emailJobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_email_jobs_processed_total",
		Help: "Email jobs processed by the delivery workers.",
	}, []string{"kind", "status"}) // status: sent, failed, rejected
)
