package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResponse struct {
	OriginalName string       `json:"original_name,omitempty"`
	Result       IngestResult `json:"result"`
}

type ProcessingDocumentStatus struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
}

type SearchResponse struct {
	Segments []ScoredSegment `json:"segments"`
}
