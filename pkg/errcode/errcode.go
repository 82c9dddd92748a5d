package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Configuration errors
	SourcesConfigError
	LookupsConfigError

	// Fetch errors
	FetchDatasetNotFoundError
	FetchReadError
	FetchHTTPError
	FetchSQLiteError
	FetchCancelledError

	// Pipeline errors
	PipelineMissingYearError
	PipelineNoYearsError
	PipelineMissingRosterError
	PipelineMissingCredentialsError

	// Cache errors
	CacheReadError
	CacheWriteError

	// Report errors
	ReportUnknownUserError
	ReportBadArgumentError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBNotConnectedError
	DBTableExistsCheckError
	DBQueryTablesError
	DBDropTableError
	DBNotReadyError
	DBQueryViewsError
	DBDropViewError
	DBCreateViewError
	DBRefreshViewError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError

	// Export errors
	ExportRunError
	ExportCopyError
	ExportFormatError
	ExportAnalyzeError
)
