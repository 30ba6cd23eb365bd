package logger

// Fields is a shorthand for structured log fields.
type Fields map[string]interface{}

// Tracing fields. These travel on the context and identify what a log
// line belongs to.
const (
	// FieldRequestID is the HTTP request id assigned by the middleware.
	FieldRequestID = "request_id"

	// FieldContentID is the content item being processed.
	FieldContentID = "content_id"

	// FieldAccount is the publishing account slug.
	FieldAccount = "account"

	// FieldLayer is the pipeline layer being run.
	FieldLayer = "layer"

	// FieldPlatform is the publishing platform.
	FieldPlatform = "platform"

	// FieldComponent names the emitting component.
	FieldComponent = "component"

	// FieldReviewer is the author of a review decision.
	FieldReviewer = "reviewer"
)

// Metric fields. These are attached per line through the Entry API.
const (
	// FieldDurationMs is elapsed time in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count.
	FieldCount = "count"

	// FieldSize is a size in bytes.
	FieldSize = "size"

	// FieldStatus is an operation or HTTP status.
	FieldStatus = "status"
)
