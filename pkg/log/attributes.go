package log

// Attribute keys shared across the pipeline so log events stay queryable.

// Model and operation identity.
const (
	// ModelNameKey identifies the model family (e.g. "elasticnet", "gbt_light").
	ModelNameKey = "model.name"

	// OperationKey names the operation being performed (e.g. "fit", "tune").
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of rows involved.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns involved.
	FeaturesKey = "data.features"
)

// Tuning progress.
const (
	// FoldKey is the cross-validation fold index (zero-based).
	FoldKey = "tune.fold"

	// ConfigKey is the hyperparameter configuration index within a grid.
	ConfigKey = "tune.config"

	// SurvivorsKey is the number of configurations still in the race.
	SurvivorsKey = "tune.survivors"

	// MetricKey is the realized value of the optimization metric.
	MetricKey = "metrics.value"

	// MetricNameKey names the optimization metric (e.g. "rmse_log1p").
	MetricNameKey = "metrics.name"

	// DurationMsKey records elapsed wall time in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
