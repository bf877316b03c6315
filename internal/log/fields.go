package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldStudentID = "student_id"
	FieldClassID   = "class_id"
	FieldYearMonth = "year_month"
	FieldAmountWon = "amount_won"
	FieldStatus    = "status"
	FieldRecords   = "records"
	FieldAcademy   = "academy"
	FieldPath      = "path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentRoster  = "roster"
	ComponentBilling = "billing"
	ComponentReport  = "report"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
	ComponentExport  = "export"
	ComponentImport  = "import"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpGenerate = "generate"
	OpExport   = "export"
	OpImport   = "import"
	OpReport   = "report"
)
