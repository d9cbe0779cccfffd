package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var outputStateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_webio",
	Subsystem:   "output",
	Name:        "state",
	Help:        "Output state (1=on, 0=off or unknown)",
	ConstLabels: map[string]string{},
}, []string{"index"})

var zoneStateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_webio",
	Subsystem:   "zone",
	Name:        "state",
	Help:        "Zone state (0=unknown, 1=disarmed, 2=armed away, 3=triggered)",
	ConstLabels: map[string]string{},
}, []string{"index"})

var zoneInfoGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_webio",
	Subsystem:   "zone",
	Name:        "info",
	Help:        "Zone names, always 1",
	ConstLabels: map[string]string{},
}, []string{"index", "name"})

var availableGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_webio",
	Subsystem:   "device",
	Name:        "available",
	Help:        "Whether the entity reported a known state in the last update",
	ConstLabels: map[string]string{},
}, []string{"kind", "index"})

var createdCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace:   "homekit_webio",
	Subsystem:   "device",
	Name:        "entities_created_total",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"kind"})

var updatesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace:   "homekit_webio",
	Subsystem:   "device",
	Name:        "status_updates_total",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"source"})

var requestCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace:   "homekit_webio",
	Subsystem:   "client",
	Name:        "requests_total",
	Help:        "",
	ConstLabels: map[string]string{},
})

var requestErrorCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace:   "homekit_webio",
	Subsystem:   "client",
	Name:        "request_errors_total",
	Help:        "",
	ConstLabels: map[string]string{},
})
