package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// tablesSchemaJSON constrains LLM output to a JSON list of tables. Rows may
// arrive as plain strings or as cell arrays; parseTables flattens the latter.
const tablesSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "title": {"type": "string"},
      "page": {"type": "integer"},
      "page_hint": {"type": "integer"},
      "rows": {
        "type": "array",
        "items": {
          "anyOf": [
            {"type": "string"},
            {"type": "array", "items": {"type": ["string", "number"]}}
          ]
        }
      }
    },
    "required": ["rows"]
  }
}`

var tablesSchema = jsonschema.MustCompileString("tables.json", tablesSchemaJSON)

// parseTables validates a raw completion against the tables schema and
// flattens it into RawTable values. Fenced code blocks around the JSON are
// tolerated; anything else malformed is an error.
func parseTables(content string) ([]RawTable, error) {
	content = stripCodeFence(content)

	var decoded any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return nil, fmt.Errorf("decode tables json: %w", err)
	}
	if err := tablesSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("tables schema validation: %w", err)
	}

	var loose []struct {
		Title    string `json:"title"`
		Page     *int   `json:"page"`
		PageHint *int   `json:"page_hint"`
		Rows     []any  `json:"rows"`
	}
	if err := json.Unmarshal([]byte(content), &loose); err != nil {
		return nil, fmt.Errorf("decode tables json: %w", err)
	}

	out := make([]RawTable, 0, len(loose))
	for _, t := range loose {
		page := t.Page
		if page == nil {
			page = t.PageHint
		}
		rows := make([]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			rows = append(rows, flattenRow(r))
		}
		out = append(out, RawTable{Title: t.Title, Page: page, Rows: rows})
	}
	return out, nil
}

func flattenRow(row any) string {
	switch v := row.(type) {
	case string:
		return v
	case []any:
		cells := make([]string, 0, len(v))
		for _, c := range v {
			switch cv := c.(type) {
			case string:
				cells = append(cells, cv)
			case float64:
				cells = append(cells, strconv.FormatFloat(cv, 'f', -1, 64))
			}
		}
		return strings.Join(cells, " ")
	default:
		return ""
	}
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
