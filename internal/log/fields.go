package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRunID         = "run_id"
	FieldDuration      = "duration_ms"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldCanonicalKey  = "canonical_key"
	FieldCadence       = "cadence"
	FieldRisk          = "risk"
	FieldEventDate     = "event_date"
	FieldAmountCents   = "amount_cents"
	FieldTransactionID = "transaction_id"
	FieldBackend       = "backend"
	FieldCount         = "count"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentEngine   = "engine"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
	ComponentHints    = "hints"
	ComponentForecast = "forecast"
)

// Operations defines standard operation names
const (
	OpRead       = "read"
	OpList       = "list"
	OpImport     = "import"
	OpDetect     = "detect"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpCategorize = "categorize"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRunID adds the forecast run identifier
func (f LogFields) WithRunID(runID string) LogFields {
	f[FieldRunID] = runID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithObligation adds the fields describing one predicted obligation
func (f LogFields) WithObligation(key, cadence, risk, date string, amountCents int64) LogFields {
	f[FieldCanonicalKey] = key
	f[FieldCadence] = cadence
	f[FieldRisk] = risk
	f[FieldEventDate] = date
	f[FieldAmountCents] = amountCents
	return f
}

// WithDuration adds the elapsed time in milliseconds and the outcome
func (f LogFields) WithDuration(durationMs int64, success bool) LogFields {
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
