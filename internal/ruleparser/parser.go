// Package ruleparser is the deterministic fallback extractor. It scans
// normalized OCR lines once, carrying pending producer, location, name,
// grapes and prices between lines, and emits an item whenever a pending
// name can be closed with a price.
package ruleparser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"winelist/internal/config"
	"winelist/internal/domain"
)

// Confidence assigned to every rule-parsed item.
const Confidence = 0.85

// Rules holds the heuristic thresholds. They are tuned to Italian wine lists
// and are approximate.
type Rules struct {
	ProseMaxWords    int
	ProseMaxChars    int
	GrapeMaxWords    int
	GrapeMaxChars    int
	LocationMaxWords int
	LocationMaxChars int
	MinPrice         float64
	MaxPrice         float64
}

// DefaultRules returns the stock thresholds.
func DefaultRules() Rules {
	return Rules{
		ProseMaxWords:    8,
		ProseMaxChars:    45,
		GrapeMaxWords:    3,
		GrapeMaxChars:    25,
		LocationMaxWords: 4,
		LocationMaxChars: 32,
		MinPrice:         1,
		MaxPrice:         500,
	}
}

// RulesFromConfig builds Rules from configuration, keeping defaults for
// unset values.
func RulesFromConfig(cfg *config.RulesConfig) Rules {
	r := DefaultRules()
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setInt(&r.ProseMaxWords, cfg.ProseMaxWords)
	setInt(&r.ProseMaxChars, cfg.ProseMaxChars)
	setInt(&r.GrapeMaxWords, cfg.GrapeMaxWords)
	setInt(&r.GrapeMaxChars, cfg.GrapeMaxChars)
	setInt(&r.LocationMaxWords, cfg.LocationMaxWords)
	setInt(&r.LocationMaxChars, cfg.LocationMaxChars)
	if cfg.MinPrice > 0 {
		r.MinPrice = float64(cfg.MinPrice)
	}
	if cfg.MaxPrice > 0 {
		r.MaxPrice = float64(cfg.MaxPrice)
	}
	return r
}

var (
	reProvince         = regexp.MustCompile(`\(([A-Z]{2})\)`)
	reTrailingProvince = regexp.MustCompile(`^(.*?)\s*\(([A-Z]{2})\)\s*$`)
	reCurrency         = regexp.MustCompile(`(?i)(€|\$|£|\beur\b|\beuro\b)`)
	reHyphenPhrase     = regexp.MustCompile(`^\PN+?\s+[-–]\s+\PN+$`)
	rePriceOnly        = regexp.MustCompile(`(?i)^(€|\$|£|eur|euro)?\s*(\d{1,4}(?:[.,]\d{1,2})?)\s*(€|\$|£|eur|euro)?\.?$`)
	rePriceToken       = regexp.MustCompile(`^(€|\$|£)?(\d{1,3}(?:[.,]\d{1,2})?)(€)?$`)
	reYear             = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\b`)
	reSpaces           = regexp.MustCompile(`\s{2,}`)
)

type price struct {
	value    float64
	currency string
}

// Parser maps normalized OCR lines to wine items.
type Parser struct {
	rules Rules
}

// New creates a Parser with the given thresholds.
func New(rules Rules) *Parser {
	return &Parser{rules: rules}
}

// Parse runs the line scan and returns the items in the order they were
// closed.
func (p *Parser) Parse(lines []string) []domain.WineItem {
	st := &state{rules: p.rules}
	for _, l := range lines {
		st.step(strings.TrimSpace(l))
	}
	return st.finish()
}

// state is the accumulator threaded through the scan.
type state struct {
	rules Rules

	name     string
	vintage  string
	grapes   string
	producer string
	location string
	section  string
	prices   []price
	trace    []string

	items []domain.WineItem
}

func (s *state) step(line string) {
	if line == "" {
		return
	}
	lower := strings.ToLower(strings.Trim(line, " :.-–*"))

	if sec, ok := sectionHeaders[lower]; ok {
		s.flushSingle()
		s.section = sec
		return
	}
	if noiseHeaders[lower] || isFormatLabel(lower) {
		return
	}

	digits := hasDigit(line)
	currency := reCurrency.MatchString(line)

	if s.isLocation(line, lower, digits) {
		s.location = line
		return
	}
	if !digits && !currency && (hasProducerKeyword(lower) || s.isHyphenPhrase(line)) {
		s.flushSingle()
		s.setProducer(line)
		return
	}
	if !digits && !currency && s.isGrapeNote(lower) {
		s.grapes = line
		s.trace = append(s.trace, line)
		return
	}
	if p, ok := s.priceOnly(line); ok {
		s.prices = append(s.prices, p)
		s.trace = append(s.trace, line)
		if len(s.prices) >= 2 {
			s.finalize()
		}
		return
	}
	if residual, prices, ok := s.inlinePrices(line); ok {
		if residual != "" {
			s.flushSingle()
			s.startName(residual)
		} else {
			s.prices = nil
		}
		s.trace = append(s.trace, line)
		s.prices = append(s.prices, prices...)
		s.finalize()
		return
	}
	if !digits && s.isDescription(line) {
		return
	}
	if !hasLetter(line) {
		return
	}

	s.flushSingle()
	s.startName(line)
	s.trace = append(s.trace, line)
}

func (s *state) finish() []domain.WineItem {
	s.flushSingle()
	return s.items
}

// isLocation matches short lines carrying a province code, e.g. "Torriana (RN)".
func (s *state) isLocation(line, lower string, digits bool) bool {
	if digits || !reProvince.MatchString(line) || hasProducerKeyword(lower) {
		return false
	}
	return len(strings.Fields(line)) <= s.rules.LocationMaxWords &&
		len([]rune(line)) <= s.rules.LocationMaxChars
}

func (s *state) isHyphenPhrase(line string) bool {
	return reHyphenPhrase.MatchString(line) && s.isShortProse(line)
}

func (s *state) isShortProse(line string) bool {
	return len(strings.Fields(line)) <= s.rules.ProseMaxWords &&
		len([]rune(line)) <= s.rules.ProseMaxChars
}

// isDescription matches tasting notes under an item that already has a
// price queued. Long lines anywhere else are names.
func (s *state) isDescription(line string) bool {
	return s.name != "" && len(s.prices) > 0 && !s.isShortProse(line)
}

// isGrapeNote applies only while a name is pending and still unpriced.
func (s *state) isGrapeNote(lower string) bool {
	if s.name == "" || len(s.prices) > 0 || s.grapes != "" {
		return false
	}
	words := strings.Fields(lower)
	if len(words) == 0 || len(words) > s.rules.GrapeMaxWords || len([]rune(lower)) > s.rules.GrapeMaxChars {
		return false
	}
	if reservedWords[strings.Trim(words[0], ".,:")] {
		return false
	}
	return hasGrapeVariety(lower) || strings.ContainsAny(lower, ",/&")
}

func (s *state) priceOnly(line string) (price, bool) {
	m := rePriceOnly.FindStringSubmatch(line)
	if m == nil {
		return price{}, false
	}
	v, ok := parseNumber(m[2])
	if !ok {
		return price{}, false
	}
	cur := currencyCode(m[1] + m[3])
	if cur == "" && (v < s.rules.MinPrice || v > s.rules.MaxPrice) {
		return price{}, false
	}
	if cur != "" && (v <= 0 || reYear.MatchString(m[2])) {
		return price{}, false
	}
	return price{value: v, currency: cur}, true
}

// inlinePrices finds one or two price tokens embedded in a line and returns
// the remaining text. Years, percentages and out-of-range numbers are not
// prices.
func (s *state) inlinePrices(line string) (string, []price, bool) {
	var (
		prices   []price
		residual []string
		lineCur  = currencyCode(line)
	)
	for _, f := range strings.Fields(line) {
		tok := strings.Trim(f, "-–—.:;|/()…*")
		if tok == "" || strings.HasSuffix(tok, "%") {
			continue
		}
		if m := rePriceToken.FindStringSubmatch(tok); m != nil {
			if v, ok := parseNumber(m[2]); ok && v >= s.rules.MinPrice && v <= s.rules.MaxPrice {
				prices = append(prices, price{value: v, currency: lineCur})
				continue
			}
		}
		if currencyCode(tok) != "" && len(tok) <= 4 {
			continue
		}
		residual = append(residual, f)
	}
	if len(prices) == 0 || len(prices) > 2 {
		return "", nil, false
	}
	name := strings.Trim(strings.Join(residual, " "), " -–—.:;|/…*")
	if name == "" && s.name == "" {
		return "", nil, false
	}
	return name, prices, true
}

func (s *state) setProducer(line string) {
	if m := reTrailingProvince.FindStringSubmatch(line); m != nil && m[1] != "" {
		s.producer = m[1]
		s.location = m[2]
		return
	}
	s.producer = line
}

// startName begins a new pending name. An unpriced, grape-less pending name
// that is short prose is taken to have been the producer heading.
func (s *state) startName(line string) {
	if s.name != "" && len(s.prices) == 0 && s.grapes == "" && s.isShortProse(s.name) && s.vintage == "" {
		s.setProducer(s.name)
	}
	s.clearName()

	vintage := reYear.FindString(line)
	name := line
	if vintage != "" {
		name = strings.TrimSpace(reSpaces.ReplaceAllString(reYear.ReplaceAllString(line, ""), " "))
		name = strings.Trim(name, " -–,")
		if name == "" {
			name = line
		}
	}
	s.name = name
	s.vintage = vintage
}

func (s *state) clearName() {
	s.name = ""
	s.vintage = ""
	s.grapes = ""
	s.prices = nil
	s.trace = nil
}

// flushSingle closes the pending item with a lone queued price as bottle price.
func (s *state) flushSingle() {
	if len(s.prices) == 1 {
		s.finalize()
	}
}

func (s *state) finalize() {
	if s.name == "" || len(s.prices) == 0 {
		s.prices = nil
		s.trace = nil
		return
	}

	item := domain.WineItem{
		Nome:       s.name,
		Annata:     s.vintage,
		Uvaggio:    s.grapes,
		Produttore: s.producer,
		Localita:   s.location,
		Sezione:    s.section,
		Confidence: Confidence,
		RawLine:    strings.Join(s.trace, " | "),
	}
	if len(s.prices) == 1 {
		item.Prezzo = domain.FormatPrice(s.prices[0].value)
	} else {
		lo := math.Min(s.prices[0].value, s.prices[1].value)
		hi := math.Max(s.prices[0].value, s.prices[1].value)
		item.Prezzo = domain.FormatPrice(hi)
		item.PrezzoBicchiere = domain.FormatPrice(lo)
	}
	for _, p := range s.prices {
		if p.currency != "" {
			item.Valuta = p.currency
			break
		}
	}
	s.items = append(s.items, item)

	// producer, location and section stay valid until overwritten
	s.clearName()
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func currencyCode(s string) string {
	m := reCurrency.FindString(s)
	switch strings.ToLower(m) {
	case "":
		return ""
	case "$":
		return "USD"
	case "£":
		return "GBP"
	default:
		return "EUR"
	}
}
