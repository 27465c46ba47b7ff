// internal/core/domain/analysis/errors.go
package analysis

import "fmt"

// AnalysisError - ошибка анализа
type AnalysisError struct {
	Message string
}

func (e *AnalysisError) Error() string {
	return e.Message
}

// Ошибки анализа.
// ErrInsufficientData — не ошибка пайплайна, а нормальный no-op:
// анализатор отказывается обновлять контекст из-за нехватки данных.
var (
	ErrInsufficientData = &AnalysisError{Message: "insufficient data"}
	ErrAnalysisFailed   = &AnalysisError{Message: "analysis failed"}
	ErrUnknownAnalyzer  = &AnalysisError{Message: "unknown analyzer"}
	ErrEmptyWindow      = &AnalysisError{Message: "empty candle window"}
)

// NewAnalysisError создает новую ошибку анализа
func NewAnalysisError(format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{
		Message: fmt.Sprintf(format, args...),
	}
}

// WithContext добавляет контекст к ошибке
func (e *AnalysisError) WithContext(context string) *AnalysisError {
	return &AnalysisError{
		Message: fmt.Sprintf("%s: %s", context, e.Message),
	}
}
