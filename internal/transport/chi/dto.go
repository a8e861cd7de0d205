package chi

import (
	"time"

	"github.com/kailas-cloud/buscadoc/internal/domain/search/result"
)

// errorCode is the machine-readable part of an error response.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidationFailed   errorCode = "validation_failed"
	codeInvalidQuery       errorCode = "invalid_query"
	codeUnauthorized       errorCode = "unauthorized"
	codeInvalidCredentials errorCode = "invalid_credentials"
	codeRateLimited        errorCode = "rate_limited"
	codeUnsupportedFile    errorCode = "unsupported_file"
	codeEmptyDataset       errorCode = "empty_dataset"
	codeFileTooLarge       errorCode = "file_too_large"
	codeUnsupportedFormat  errorCode = "unsupported_format"
	codeRecordNotFound     errorCode = "record_not_found"
	codeNotFound           errorCode = "not_found"
	codePersistFailed      errorCode = "persist_failed"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	User    string `json:"user"`
	Name    string `json:"name"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type searchRequest struct {
	Query         string `json:"query"`
	Mode          string `json:"mode"`
	Field         string `json:"field"`
	CaseSensitive bool   `json:"case_sensitive"`
	DataSource    string `json:"dataSource"`
}

type exportRequest struct {
	searchRequest
	Format string `json:"format"`
}

type searchResponse struct {
	Results      []result.Result `json:"results"`
	Query        string          `json:"query"`
	Mode         string          `json:"mode"`
	IsExcelData  bool            `json:"is_excel_data"`
	TotalRecords int             `json:"total_records"`
}

type uploadResponse struct {
	Success  bool     `json:"success"`
	Filename string   `json:"filename"`
	Records  int      `json:"records"`
	Columns  []string `json:"columns"`
}

type statusResponse struct {
	User          string     `json:"user"`
	Name          string     `json:"name"`
	HasExcelData  bool       `json:"has_excel_data"`
	Filename      string     `json:"filename"`
	Records       int        `json:"records"`
	UploadedAt    *time.Time `json:"uploaded_at,omitempty"`
	SampleRecords int        `json:"sample_records"`
}

type updateRequest struct {
	ExpBN string  `json:"exp_bn"`
	Field string  `json:"field"`
	Value *string `json:"value"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Records int               `json:"records"`
	Version string            `json:"version"`
}
