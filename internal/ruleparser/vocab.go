package ruleparser

import "strings"

// Section headers set the current menu section and are otherwise discarded.
var sectionHeaders = map[string]string{
	"bollicine":          "Bollicine",
	"spumanti":           "Bollicine",
	"metodo classico":    "Bollicine",
	"champagne":          "Champagne",
	"franciacorta":       "Bollicine",
	"vini bianchi":       "Bianchi",
	"bianchi":            "Bianchi",
	"white wines":        "Bianchi",
	"vini rossi":         "Rossi",
	"rossi":              "Rossi",
	"red wines":          "Rossi",
	"vini rosati":        "Rosati",
	"rosati":             "Rosati",
	"rosé":               "Rosati",
	"rose wines":         "Rosati",
	"orange wines":       "Orange",
	"vini orange":        "Orange",
	"macerati":           "Orange",
	"vini dolci":         "Dolci",
	"dolci":              "Dolci",
	"passiti":            "Dolci",
	"vini da dessert":    "Dolci",
	"dessert wines":      "Dolci",
	"vini al calice":     "Al calice",
	"al bicchiere":       "Al calice",
	"wines by the glass": "Al calice",
	"sparkling":          "Bollicine",
	"sparkling wines":    "Bollicine",
}

// Boilerplate discarded before classification.
var noiseHeaders = map[string]bool{
	"carta dei vini": true,
	"lista dei vini": true,
	"wine list":      true,
	"vini":           true,
	"wines":          true,
	"menu":           true,
	"cantina":        true,
	"i nostri vini":  true,
	"la cantina":     true,
	"prezzi":         true,
	"prezzo":         true,
	"price":          true,
	"prices":         true,
	"euro":           true,
	"€":              true,
	// regions
	"piemonte":              true,
	"valle d'aosta":         true,
	"lombardia":             true,
	"trentino":              true,
	"alto adige":            true,
	"trentino alto adige":   true,
	"trentino-alto adige":   true,
	"veneto":                true,
	"friuli":                true,
	"friuli venezia giulia": true,
	"friuli-venezia giulia": true,
	"liguria":               true,
	"emilia romagna":        true,
	"emilia-romagna":        true,
	"romagna":               true,
	"toscana":               true,
	"umbria":                true,
	"marche":                true,
	"lazio":                 true,
	"abruzzo":               true,
	"molise":                true,
	"campania":              true,
	"puglia":                true,
	"basilicata":            true,
	"calabria":              true,
	"sicilia":               true,
	"sardegna":              true,
	"italia":                true,
	"francia":               true,
	"france":                true,
	"germania":              true,
	"austria":               true,
	"spagna":                true,
	"estero":                true,
}

// Bottle/glass format labels, possibly combined ("bottiglia / calice").
var formatWords = map[string]bool{
	"bottiglia": true,
	"bott":      true,
	"bott.":     true,
	"bt":        true,
	"bicchiere": true,
	"calice":    true,
	"al":        true,
	"bottle":    true,
	"glass":     true,
	"magnum":    true,
	"mezza":     true,
	"0,375":     true,
	"0,75":      true,
	"0.75":      true,
	"1,5":       true,
	"l":         true,
	"lt":        true,
	"cl":        true,
	"75cl":      true,
	"37,5cl":    true,
}

var producerKeywords = []string{
	"cantina", "cantine", "tenuta", "tenute", "azienda", "agricola",
	"fattoria", "podere", "castello", "cascina", "masseria", "vigneti",
	"viticoltori", "produttori", "marchesi", "marchese", "conti", "feudi",
	"feudo", "poderi", "winery", "estate", "domaine", "château", "chateau",
	"weingut", "bodega", "bodegas", "maison", "società", "soc.", "az.",
	"agr.", "f.lli", "fratelli",
}

var grapeVarieties = []string{
	"sangiovese", "nebbiolo", "barbera", "dolcetto", "merlot", "cabernet",
	"sauvignon", "chardonnay", "pinot", "glera", "vermentino",
	"trebbiano", "montepulciano", "aglianico", "primitivo", "negroamaro",
	"nero d'avola", "syrah", "shiraz", "grenache", "riesling", "traminer",
	"gewurztraminer", "gewürztraminer", "moscato", "malvasia", "corvina",
	"corvinone", "rondinella", "lagrein", "teroldego", "schiava", "grechetto",
	"fiano", "greco", "falanghina", "garganega", "verdicchio", "pecorino",
	"passerina", "cannonau", "carignano", "nerello", "frappato", "grillo",
	"catarratto", "insolia", "zibibbo", "ribolla", "friulano", "refosco",
	"kerner", "sylvaner", "müller", "muller", "incrocio", "manzoni",
	"sagrantino", "canaiolo", "colorino", "ciliegiolo", "alicante",
	"gamay", "viognier", "marsanne", "roussanne", "chenin", "tempranillo",
	"arneis", "cortese", "timorasso", "erbaluce", "ruchè", "freisa",
	"grignolino", "pelaverga", "croatina", "uva rara", "groppello",
	"lambrusco", "bombino", "nosiola", "petit verdot", "carmenere",
}

// Words a grape note may not start with.
var reservedWords = map[string]bool{
	"vini":      true,
	"vino":      true,
	"carta":     true,
	"lista":     true,
	"menu":      true,
	"prezzo":    true,
	"prezzi":    true,
	"bottiglia": true,
	"calice":    true,
	"bicchiere": true,
	"doc":       true,
	"docg":      true,
	"igt":       true,
}

func hasProducerKeyword(lower string) bool {
	for _, w := range strings.Fields(lower) {
		for _, k := range producerKeywords {
			if w == k {
				return true
			}
		}
	}
	return false
}

func hasGrapeVariety(lower string) bool {
	for _, g := range grapeVarieties {
		if strings.Contains(lower, g) {
			return true
		}
	}
	return false
}

func isFormatLabel(lower string) bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '/' || r == '-' || r == '|'
	})
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !formatWords[f] {
			return false
		}
	}
	return true
}
