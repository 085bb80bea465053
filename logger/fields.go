package logger

// Standard field keys for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldOperation = "operation"
	FieldSource    = "source"
	FieldCode      = "code"
	FieldError     = "error"
	FieldStatus    = "status"
)

// Fields builds a field map from alternating key-value pairs.
//
//	log.Info("done", logger.Fields("op", "save", "id", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}
