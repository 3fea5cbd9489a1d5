package domain

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Restaurant is the owning record an import is authorized against.
type Restaurant struct {
	ID                 uuid.UUID      `db:"id" json:"id"`
	OwnerID            uuid.UUID      `db:"owner_id" json:"owner_id"`
	Name               string         `db:"name" json:"name"`
	SubscriptionPlan   string         `db:"subscription_plan" json:"subscription_plan"`
	SubscriptionStatus sql.NullString `db:"subscription_status" json:"-"`
}

// CanImportOCR reports whether the restaurant's plan unlocks OCR import:
// a pro plan with an active or empty subscription status.
func (r *Restaurant) CanImportOCR() bool {
	if r.SubscriptionPlan != PlanPro {
		return false
	}
	if !r.SubscriptionStatus.Valid {
		return true
	}
	s := r.SubscriptionStatus.String
	return s == "" || s == SubscriptionStatusActive
}

// ImportJob tracks one OCR import request.
type ImportJob struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RistoranteID uuid.UUID `db:"ristorante_id" json:"ristorante_id"`
	Status       JobStatus `db:"status" json:"status"`
	FileBucket   string    `db:"file_bucket" json:"file_bucket"`
	FilePath     string    `db:"file_path" json:"file_path"`
	FileMime     string    `db:"file_mime" json:"file_mime"`
	Progress     int       `db:"progress" json:"progress"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ImportItem is a persisted extraction row linked to a job.
type ImportItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	JobID       uuid.UUID `db:"job_id" json:"job_id"`
	RawLine     string    `db:"raw_line" json:"raw_line"`
	NameGuess   string    `db:"name_guess" json:"name_guess"`
	PriceGuess  string    `db:"price_guess" json:"price_guess"`
	GrapesGuess string    `db:"grapes_guess" json:"grapes_guess"`
	Confidence  float64   `db:"confidence" json:"confidence"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// WineItem is the response shape of an extracted wine-list entry.
type WineItem struct {
	Nome            string   `json:"nome"`
	Annata          string   `json:"annata,omitempty"`
	Uvaggio         string   `json:"uvaggio,omitempty"`
	Prezzo          string   `json:"prezzo,omitempty"`
	PrezzoBicchiere string   `json:"prezzo_bicchiere,omitempty"`
	Valuta          string   `json:"valuta,omitempty"`
	Produttore      string   `json:"produttore,omitempty"`
	Localita        string   `json:"localita,omitempty"`
	Sezione         string   `json:"sezione,omitempty"`
	Note            string   `json:"note,omitempty"`
	Confidence      float64  `json:"confidence"`
	SourceLines     []string `json:"source_lines,omitempty"`
	SourceText      string   `json:"source_text,omitempty"`
	RawLine         string   `json:"raw_line,omitempty"`
}

// PriceGuess returns the price persisted on the item row: the bottle price,
// or the glass price when no bottle price was found.
func (w *WineItem) PriceGuess() string {
	if w.Prezzo != "" {
		return w.Prezzo
	}
	return w.PrezzoBicchiere
}

// Trace returns the text persisted as raw_line.
func (w *WineItem) Trace() string {
	if w.RawLine != "" {
		return w.RawLine
	}
	if w.SourceText != "" {
		return w.SourceText
	}
	return w.Nome
}

// FormatPrice renders a price with a comma decimal separator, dropping the
// decimals for whole amounts: 28 -> "28", 6.5 -> "6,50".
func FormatPrice(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}
