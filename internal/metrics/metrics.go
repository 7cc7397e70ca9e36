package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by all parse counters.
const (
	OutcomeOK         = "ok"
	OutcomeMalformed  = "malformed"
	OutcomeIncomplete = "incomplete"
	OutcomeInvalid    = "invalid"
)

var (
	// DNSParses tracks DNS wire parses by outcome
	DNSParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irisparse_dns_parses_total",
		Help: "Total number of DNS wire format parses by outcome",
	}, []string{"outcome"})

	// HTTPParses tracks HTTP header-block parses by direction and outcome
	HTTPParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irisparse_http_parses_total",
		Help: "Total number of HTTP message parses by direction and outcome",
	}, []string{"direction", "outcome"})
)
