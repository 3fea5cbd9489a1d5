package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// ImportRequest is the body of POST /ocr-wine-import.
type ImportRequest struct {
	RistoranteID  string `json:"ristorante_id" example:"3f2b6c1e-8a7d-4f0e-9b1a-2c3d4e5f6a7b"`
	StorageBucket string `json:"storage_bucket" example:"wine-lists"`
	StoragePath   string `json:"storage_path" example:"3f2b6c1e/carta-2024.pdf"`
}

// --- Response Types ---

// ImportResponse documents the import result.
type ImportResponse struct {
	JobID         string        `json:"job_id" example:"a1b2c3d4-0000-4000-8000-000000000001"`
	Items         []WineItemDoc `json:"items"`
	RawOCRPreview string        `json:"raw_ocr_preview" example:"VINI ROSSI\nChianti Classico Riserva\n28\n6"`
}

// WineItemDoc documents one extracted wine entry.
type WineItemDoc struct {
	Nome            string   `json:"nome" example:"Chianti Classico Riserva"`
	Annata          string   `json:"annata,omitempty" example:"2019"`
	Uvaggio         string   `json:"uvaggio,omitempty" example:"Sangiovese"`
	Prezzo          string   `json:"prezzo,omitempty" example:"28"`
	PrezzoBicchiere string   `json:"prezzo_bicchiere,omitempty" example:"6"`
	Valuta          string   `json:"valuta,omitempty" example:"EUR"`
	Produttore      string   `json:"produttore,omitempty" example:"Castello di Ama"`
	Localita        string   `json:"localita,omitempty" example:"SI"`
	Sezione         string   `json:"sezione,omitempty" example:"Rossi"`
	Note            string   `json:"note,omitempty"`
	Confidence      float64  `json:"confidence" example:"0.85"`
	SourceLines     []string `json:"source_lines,omitempty" example:"L0002,L0003"`
	SourceText      string   `json:"source_text,omitempty" example:"Chianti Classico Riserva | 28"`
	RawLine         string   `json:"raw_line,omitempty" example:"Chianti Classico Riserva | 28 | 6"`
}

// ExportResponse documents the export result.
type ExportResponse struct {
	URL       string `json:"url" example:"https://storage.example.com/exports/...?X-Amz-Signature=..."`
	Key       string `json:"key" example:"exports/3f2b6c1e-8a7d-4f0e-9b1a-2c3d4e5f6a7b/a1b2c3d4-0000-4000-8000-000000000001.xlsx"`
	Format    string `json:"format" example:"xlsx"`
	ExpiresIn int64  `json:"expires_in" example:"3600"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}
