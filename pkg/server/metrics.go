package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coursebuilder",
	Name:      "schedule_rejections_total",
	Help:      "Schedule changes rejected by validation, by rule.",
}, []string{"rule"})

var scheduled = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coursebuilder",
	Name:      "sections_scheduled_total",
	Help:      "Sections added to the schedule.",
})
