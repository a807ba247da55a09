package logging

// Field names shared by every log entry.
const (
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldRemoteAddr = "remote_addr"
	FieldUserAgent  = "user_agent"

	// FieldResource is the plural resource name, e.g. "users".
	FieldResource = "resource"

	// FieldName is the metadata.name of the object being handled.
	FieldName = "name"

	FieldComponent = "component"
	FieldOperation = "operation"
)
