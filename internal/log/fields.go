package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldOwnerID      = "owner_id"
	FieldRecordID     = "record_id"
	FieldPocketID     = "pocket_id"
	FieldInstrumentID = "instrument_id"
	FieldRoomID       = "room_id"
	FieldExpenseID    = "expense_id"
	FieldAmountCents  = "amount_cents"
	FieldCategory     = "category"
	FieldDirection    = "direction"
	FieldExportRef    = "export_ref"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentSplit    = "split"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentExport   = "export"
	ComponentCache    = "cache"
	ComponentSecurity = "security"
)
