package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientHistory  ErrorCode = 106
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110
	ErrCodeInvalidThreshold     ErrorCode = 112
	ErrCodeInvalidSeries        ErrorCode = 120
	ErrCodeUnorderedDates       ErrorCode = 121
	ErrCodeMissingClose         ErrorCode = 122

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302
	ErrCodeStageOrder             ErrorCode = 303

	// Cache errors (400-499)
	ErrCodeCacheReadFailed    ErrorCode = 400
	ErrCodeCacheWriteFailed   ErrorCode = 401
	ErrCodeCacheSchemaVersion ErrorCode = 402

	// Recorder errors (500-599)
	ErrCodeRecorderOpenFailed  ErrorCode = 500
	ErrCodeRecorderWriteFailed ErrorCode = 501

	// Service errors (600-699)
	ErrCodeUnknownTicker   ErrorCode = 600
	ErrCodeAnalysisFailed  ErrorCode = 601
	ErrCodeScheduleInvalid ErrorCode = 602

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 704

	// Export errors (800-899)
	ErrCodeExportFailed      ErrorCode = 800
	ErrCodeUnsupportedFormat ErrorCode = 801
)
