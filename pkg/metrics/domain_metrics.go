package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// VersionsCreated counts configuration versions created per entity type
	VersionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_versions_created_total",
			Help: "Total number of configuration versions created",
		},
		[]string{"entity"},
	)

	// VersionConflicts counts createNewVersion calls that lost a race
	VersionConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_version_conflicts_total",
			Help: "Total number of rejected concurrent version creations",
		},
		[]string{"entity"},
	)

	// TemplateResolutions counts effective template lookups by the tier that answered
	TemplateResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_resolutions_total",
			Help: "Total number of template resolutions by tier (tenant, global, builtin)",
		},
		[]string{"tier"},
	)

	// PromptCompositions counts prompt builds by result
	PromptCompositions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_compositions_total",
			Help: "Total number of system prompt compositions",
		},
		[]string{"result"}, // "ok", "unavailable", "not_found", "error"
	)

	// KnowledgeOperations counts knowledge repository writes
	KnowledgeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_operations_total",
			Help: "Total number of knowledge repository writes",
		},
		[]string{"operation"},
	)

	// DBOperationDuration records the duration of store operations
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDurationHistogram)
	prometheus.MustRegister(StatusCodeCategoryCounter)

	prometheus.MustRegister(VersionsCreated)
	prometheus.MustRegister(VersionConflicts)
	prometheus.MustRegister(TemplateResolutions)
	prometheus.MustRegister(PromptCompositions)
	prometheus.MustRegister(KnowledgeOperations)
	prometheus.MustRegister(DBOperationDuration)
}

// TrackDBOperation measures a store operation; use as
// defer metrics.TrackDBOperation("op")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// RecordVersionCreated records a successful version creation
func RecordVersionCreated(entity string) {
	VersionsCreated.WithLabelValues(entity).Inc()
}

// RecordVersionConflict records a rejected concurrent version creation
func RecordVersionConflict(entity string) {
	VersionConflicts.WithLabelValues(entity).Inc()
}

// RecordTemplateResolution records which tier answered a template lookup
func RecordTemplateResolution(tier string) {
	TemplateResolutions.WithLabelValues(tier).Inc()
}

// RecordPromptComposition records a prompt build result
func RecordPromptComposition(result string) {
	PromptCompositions.WithLabelValues(result).Inc()
}

// RecordKnowledgeOperation records a knowledge repository write
func RecordKnowledgeOperation(operation string) {
	KnowledgeOperations.WithLabelValues(operation).Inc()
}
