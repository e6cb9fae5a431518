package dto

type ResultType string

const (
	ResultSuccess  ResultType = "success"
	ResultResponse ResultType = "response"
	ResultError    ResultType = "error"
)

// Result is the payload every engine entry point returns. The HTTP layer
// maps Type to a status code; engines never leak raw errors to clients.
type Result struct {
	Type ResultType `json:"type"`
	Data any        `json:"data"`
}

func Success(data any) *Result {
	return &Result{Type: ResultSuccess, Data: data}
}

func Response(data any) *Result {
	return &Result{Type: ResultResponse, Data: data}
}

func Error(err error) *Result {
	return &Result{Type: ResultError, Data: map[string]string{"error": err.Error()}}
}
