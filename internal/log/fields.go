package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldVehicleID     = "vehicle_id"
	FieldRecordID      = "record_id"
	FieldRecordKind    = "record_kind"
	FieldCurrency      = "currency"
	FieldAmount        = "amount"
	FieldMonth         = "month"
	FieldRecordCount   = "record_count"
	FieldSheetRef      = "sheet_ref"
	FieldQueue         = "queue"
	FieldExchange      = "exchange"
	FieldBackend       = "backend"
	FieldCacheHit      = "cache_hit"
	FieldSyncedPending = "synced_pending"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAnalytics = "analytics"
	ComponentRecords   = "records"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
)
