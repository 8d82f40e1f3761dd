package prom

import (
	"fmt"
	"sync"

	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemInquiry = "inquiry"
	SystemVisitor = "visitor"
	SystemEmail   = "email"
	SystemDigest  = "digest"
)

const (
	MetricInquiryCreatedTotal    = "created_total"
	MetricVisitLoggedTotal       = "logged_total"
	MetricEmailSentTotal         = "sent_total"
	MetricEmailDurationSeconds   = "send_duration_seconds"
	MetricDigestRunsTotal        = "runs_total"
	MetricDigestDurationSeconds  = "run_duration_seconds"
	MetricDigestLastSuccessEpoch = "last_success_timestamp_seconds"
)

const (
	TypeCounter      = "counter"
	TypeCounterVec   = "counterVec"
	TypeHistogramVec = "histogramVec"
	TypeGaugeVec     = "gaugeVec"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var registry prometheus.Registerer = prometheus.DefaultRegisterer
var gatherer prometheus.Gatherer = prometheus.DefaultGatherer

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionGaugeVec = make(map[string]*prometheus.GaugeVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers every metric the service reports. Until it is called all
// Inc/Add/Observe helpers are no-ops.
func Create(host string, env string, nameSpace string) error {
	return CreateWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, host, env, nameSpace)
}

func CreateWithRegistry(reg prometheus.Registerer, gat prometheus.Gatherer, host, env, nameSpace string) error {
	registry = reg
	gatherer = gat
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	if nameSpace != "" {
		namespace = nameSpace
	}
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemInquiry, MetricInquiryCreatedTotal, []string{"art_type"}))
	hasError(createCounter(SystemVisitor, MetricVisitLoggedTotal))
	hasError(createCounterVec(SystemEmail, MetricEmailSentTotal, []string{"kind", "provider", "status"}))
	hasError(createHistogramVec(SystemEmail, MetricEmailDurationSeconds, []string{"kind", "provider"}))
	hasError(createCounterVec(SystemDigest, MetricDigestRunsTotal, []string{"outcome"}))
	hasError(createHistogramVec(SystemDigest, MetricDigestDurationSeconds, []string{"outcome"}))
	hasError(createGaugeVec(SystemDigest, MetricDigestLastSuccessEpoch, []string{}))

	return err
}

func CreateMetric(metricType, metricSubsystem, metricName string, labelsValues ...string) error {
	switch metricType {
	case TypeCounter:
		return createCounter(metricSubsystem, metricName)
	case TypeCounterVec:
		return createCounterVec(metricSubsystem, metricName, labelsValues)
	case TypeHistogramVec:
		return createHistogramVec(metricSubsystem, metricName, labelsValues)
	case TypeGaugeVec:
		return createGaugeVec(metricSubsystem, metricName, labelsValues)
	}
	return fmt.Errorf("metric type %s is not defined", metricType)
}

// Handler exposes the registry in the prometheus text format.
func Handler() xhttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

func ListenAndServer(addr string, url string) {
	s := xhttp.CreateServer()
	s.GET(url, Handler())
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        subsystem + " " + name,
		ConstLabels: defaultLabels,
	})
	return registry.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        subsystem + " " + name,
		ConstLabels: defaultLabels,
	}, labels)
	return registry.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        subsystem + " " + name,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	return registry.Register(MetricCollectionHistogramVec[subsystem+name])
}

func createGaugeVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionGaugeVec[subsystem+name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        subsystem + " " + name,
		ConstLabels: defaultLabels,
	}, labels)
	return registry.Register(MetricCollectionGaugeVec[subsystem+name])
}

func IncCounter(subsystem, name string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Inc()
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func SetGaugeVec(subsystem, name string, value float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionGaugeVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Set(value)
		return
	}
	logger.Warn("[metrics-server] gauge not found", "subsystem", subsystem, "name", name)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

func IncInquiryCreated(artType string) {
	IncCounterVec(SystemInquiry, MetricInquiryCreatedTotal, artType)
}

func IncVisitLogged() {
	IncCounter(SystemVisitor, MetricVisitLoggedTotal)
}

func ObserveEmail(kind, provider, status string, seconds float64) {
	IncCounterVec(SystemEmail, MetricEmailSentTotal, kind, provider, status)
	AddHistogramVec(SystemEmail, MetricEmailDurationSeconds, seconds, kind, provider)
}

func ObserveDigestRun(outcome string, seconds float64) {
	IncCounterVec(SystemDigest, MetricDigestRunsTotal, outcome)
	AddHistogramVec(SystemDigest, MetricDigestDurationSeconds, seconds, outcome)
}

func SetDigestLastSuccess(unix float64) {
	SetGaugeVec(SystemDigest, MetricDigestLastSuccessEpoch, unix)
}
