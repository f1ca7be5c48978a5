package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoresCalculated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_scores_calculated_total",
			Help: "Total number of credit scores calculated",
		},
		[]string{"source"},
	)

	ScoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credit_score_value",
			Help:    "Distribution of calculated credit scores",
			Buckets: []float64{350, 400, 450, 500, 550, 580, 620, 670, 700, 740, 780, 800, 850},
		},
	)

	ReportsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_reports_parsed_total",
			Help: "Total number of credit reports parsed",
		},
		[]string{"format"},
	)

	ParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_report_parse_failures_total",
			Help: "Total number of credit reports that failed to parse",
		},
		[]string{"format"},
	)

	BureauSimulations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bureau_simulations_total",
			Help: "Total number of bureau score simulations",
		},
		[]string{"known_bureau", "cache"},
	)

	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reminders_sent_total",
			Help: "Total number of payment reminder emails",
		},
		[]string{"result"},
	)

	LettersGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispute_letters_generated_total",
			Help: "Total number of dispute letters generated",
		},
		[]string{"type"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route", "status"},
	)
)
