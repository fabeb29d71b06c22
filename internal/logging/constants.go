package logging

// Standardized field names for structured logging.
const (
	FieldFile       = "file_path"
	FieldParser     = "parser"
	FieldGroupKey   = "group_key"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldRow        = "row"
	FieldDelimiter  = "delimiter"
	FieldEncoding   = "encoding"
	FieldLocale     = "locale"
	FieldFiscalYear = "fiscal_year"
	FieldGaps       = "gaps"
	FieldShifts     = "shifts"
	FieldFormat     = "format"
	FieldOutputFile = "output_file"
	FieldModel      = "model"
)
