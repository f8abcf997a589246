package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldErrorType    = "error_type"
	FieldOperation    = "operation"
	FieldActionType   = "action_type"
	FieldCategoryID   = "category_id"
	FieldExpenseID    = "expense_id"
	FieldStateVersion = "state_version"
	FieldStorageKey   = "storage_key"
	FieldBackend      = "backend"
	FieldBytes        = "bytes"
	FieldQueue        = "queue"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentPersist = "persist"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
	ComponentMetrics = "metrics"
)

// Operations defines standard operation names
const (
	OpDispatch = "dispatch"
	OpHydrate  = "hydrate"
	OpLoad     = "load"
	OpSave     = "save"
	OpPublish  = "publish"
	OpDecode   = "decode"
	OpEncode   = "encode"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeReference     = "reference_error"
	ErrorTypeMalformed     = "malformed_document"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithAction adds the action type and resulting state version
func (f LogFields) WithAction(actionType string, version uint64) LogFields {
	f[FieldActionType] = actionType
	f[FieldStateVersion] = version
	return f
}

// WithStorageKey adds the persisted slot key
func (f LogFields) WithStorageKey(key string) LogFields {
	f[FieldStorageKey] = key
	return f
}

// With adds an arbitrary key/value pair
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
