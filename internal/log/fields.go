package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldDuration    = "duration_ms"
	FieldExpenseID   = "expense_id"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldExpenseDate = "expense_date"
	FieldPeriod      = "period"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldCount       = "count"
	FieldBackend     = "backend"
	FieldEventType   = "event_type"
	FieldEventID     = "event_id"
	FieldCacheHit    = "cache_hit"
	FieldSheetsRef   = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentPostgres = "postgres"
	ComponentAMQP     = "amqp"
	ComponentKafka    = "kafka"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpCreate          = "create"
	OpRead            = "read"
	OpUpdate          = "update"
	OpDelete          = "delete"
	OpList            = "list"
	OpCategorySummary = "category_summary"
	OpPeriodSummary   = "period_summary"
	OpTrend           = "trend"
	OpPublish         = "publish"
	OpConsume         = "consume"
	OpAppend          = "append"
	OpSeed            = "seed"
	OpMigrate         = "migrate"
	OpShutdown        = "shutdown"
	OpStartup         = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
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

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errType string) LogFields {
	f[FieldErrorType] = errType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id, category, amount, date string) LogFields {
	f[FieldExpenseID] = id
	f[FieldCategory] = category
	f[FieldAmount] = amount
	f[FieldExpenseDate] = date
	return f
}

// WithRange adds the bounds of a date window
func (f LogFields) WithRange(start, end string) LogFields {
	f[FieldStartDate] = start
	f[FieldEndDate] = end
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
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
