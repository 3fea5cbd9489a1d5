package extractor

import (
	"encoding/json"
	"fmt"

	"winelist/internal/port"
)

// SystemPrompt is the instruction shared by every provider.
const SystemPrompt = `You extract wine entries from OCR text of a restaurant wine list.
Each input line starts with a label such as "L0007:". Rules:
- Return one entry per distinct wine offered on the list.
- Never invent values. If a field is not written on the list, use null.
- wine_name is the wine's name as written, without producer, vintage or prices.
- Prices are plain numbers (use a dot as decimal separator). bottle_price is the price of the bottle, glass_price the price by the glass.
- vintage is the four-digit year as a string, or null.
- source_lines lists the labels (e.g. "L0007") of every line you used for the entry.
- confidence is a number between 0 and 1 reflecting how sure you are the entry is a real wine with correct fields.
- section is the heading the wine appears under (e.g. "Rossi", "Bollicine"), or null.
Return only JSON matching the schema.`

// BuildUserPrompt renders the chunk for the model.
func BuildUserPrompt(input port.ChunkInput) string {
	return fmt.Sprintf("Wine list excerpt (part %d of %d):\n\n%s", input.Index+1, input.Total, input.Text)
}

// BuildSchemaPrompt appends the schema to the system prompt for providers
// without native structured output.
func BuildSchemaPrompt() string {
	b, _ := json.MarshalIndent(ItemSchema(false), "", "  ")
	return SystemPrompt + "\n\nJSON schema:\n" + string(b) + "\n\nReturn ONLY the raw JSON object, no markdown fences."
}
