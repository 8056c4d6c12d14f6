package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldSuccess     = "success"
	FieldUID         = "uid"
	FieldUser        = "user"
	FieldURL         = "url"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldTxnCount    = "transaction_count"
	FieldAccounts    = "account_count"
	FieldMonthCount  = "month_count"
	FieldIgnored     = "ignored_count"
	FieldSpentCents  = "spent_cents"
	FieldIncomeCents = "income_cents"
	FieldBackend     = "backend"
	FieldExchange    = "exchange"
	FieldQueue       = "queue"
	FieldSheetsRef   = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentSource  = "source"
	ComponentReport  = "report"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpLogin     = "login"
	OpFetch     = "fetch"
	OpAggregate = "aggregate"
	OpExport    = "export"
	OpPublish   = "publish"
	OpSync      = "sync"
	OpReplace   = "replace"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
