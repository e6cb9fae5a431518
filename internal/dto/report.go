package dto

type ReportRequest struct {
	Message string `json:"message"`
}

type ReportData struct {
	Report string `json:"report"`
}
