package extractor

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"winelist/internal/domain"
	"winelist/internal/textnorm"
)

// MaxUnsourcedConfidence caps items whose cited lines resolve to no text.
const MaxUnsourcedConfidence = 0.5

// Wine is one model-extracted entry as defined by ItemSchema.
type Wine struct {
	WineName    string   `json:"wine_name"`
	Confidence  float64  `json:"confidence"`
	SourceLines []string `json:"source_lines"`
	Section     *string  `json:"section"`
	Producer    *string  `json:"producer"`
	Vintage     *string  `json:"vintage"`
	Grapes      *string  `json:"grapes"`
	BottlePrice *float64 `json:"bottle_price"`
	GlassPrice  *float64 `json:"glass_price"`
	Currency    *string  `json:"currency"`
	Notes       *string  `json:"notes"`
	Location    *string  `json:"location"`

	SourceText string `json:"-"`
}

// Decode validates raw model output and returns its entries.
func Decode(raw []byte) ([]Wine, error) {
	raw = []byte(stripCodeFence(string(raw)))
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var out struct {
		Items []Wine `json:"items"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding output: %w", err)
	}
	return out.Items, nil
}

// DedupKey is the normalized (producer, name, vintage, bottle, glass) fingerprint.
func DedupKey(w *Wine) string {
	return strings.Join([]string{
		normalizeKey(deref(w.Producer)),
		normalizeKey(w.WineName),
		normalizeKey(deref(w.Vintage)),
		formatPtr(w.BottlePrice),
		formatPtr(w.GlassPrice),
	}, "|")
}

// Merge concatenates per-chunk results, keeps the first entry per DedupKey,
// orders entries by their lowest cited line and attaches the cited text.
func Merge(batches [][]Wine, lines []textnorm.Line) []Wine {
	seen := make(map[string]bool)
	var merged []Wine
	for _, batch := range batches {
		for i := range batch {
			key := DedupKey(&batch[i])
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, batch[i])
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return minLine(merged[i].SourceLines) < minLine(merged[j].SourceLines)
	})

	for i := range merged {
		w := &merged[i]
		w.SourceText = sourceText(w.SourceLines, lines)
		w.Confidence = clampConfidence(w.Confidence, w.SourceText != "")
	}
	return merged
}

// ToWineItem maps an extracted entry to the response shape.
func ToWineItem(w *Wine) domain.WineItem {
	return domain.WineItem{
		Nome:            displayName(deref(w.Producer), w.WineName),
		Annata:          deref(w.Vintage),
		Uvaggio:         deref(w.Grapes),
		Prezzo:          formatPtr(w.BottlePrice),
		PrezzoBicchiere: formatPtr(w.GlassPrice),
		Valuta:          deref(w.Currency),
		Produttore:      deref(w.Producer),
		Localita:        deref(w.Location),
		Sezione:         deref(w.Section),
		Note:            deref(w.Notes),
		Confidence:      w.Confidence,
		SourceLines:     w.SourceLines,
		SourceText:      w.SourceText,
	}
}

func displayName(producer, name string) string {
	producer = strings.TrimSpace(producer)
	name = strings.TrimSpace(name)
	if producer == "" || strings.Contains(strings.ToLower(name), strings.ToLower(producer)) {
		return name
	}
	return producer + " " + name
}

func clampConfidence(c float64, sourced bool) float64 {
	if math.IsNaN(c) || math.IsInf(c, -1) {
		c = 0
	}
	c = math.Max(0, math.Min(1, c))
	if !sourced {
		c = math.Min(c, MaxUnsourcedConfidence)
	}
	return c
}

func minLine(labels []string) int {
	lo := math.MaxInt
	for _, l := range labels {
		if n := textnorm.LineNumber(l); n > 0 && n < lo {
			lo = n
		}
	}
	return lo
}

func sourceText(labels []string, lines []textnorm.Line) string {
	var parts []string
	used := make(map[int]bool)
	for _, l := range labels {
		n := textnorm.LineNumber(l)
		if n < 1 || n > len(lines) || used[n] {
			continue
		}
		used[n] = true
		parts = append(parts, lines[n-1].Text)
	}
	return strings.Join(parts, " | ")
}

func normalizeKey(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

func formatPtr(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return ""
	}
	return domain.FormatPrice(*v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
