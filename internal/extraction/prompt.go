package extraction

import (
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/tmc/langchaingo/llms"
)

const systemPrompt = `You turn freelancer search queries into structured filters by calling extract_search_filters.

Rules:
- Only extract what the query states or clearly implies. Leave a field out when unsure.
- Correct obvious typos ("pyhton" -> "python") and reflect the correction in cleanQuery.
- Rates are hourly and must be returned in cents: "$50/hr" -> min_rate 4250, max_rate 5750 (a band of 15%, at least $5 each side). "under $60" -> max_rate 6000. "at least $40" -> min_rate 4000.
- Seniority: senior, lead, principal, staff -> expert; junior, entry level, beginner -> entry; mid level, intermediate -> intermediate.
- "remote" -> location "Remote". Cities and countries are returned as written.
- "available", "available now" -> available_only true. "20 hours a week" -> availability_hours_per_week 20.
- specializations must come from the allowed list. A React developer is frontend_development and web_development. A full-stack developer is fullstack_development and web_development.
- skills are concrete technologies or tools named in the query (React, Figma, Kubernetes).
- cleanQuery keeps the role and skill words and removes every phrase that became a filter (seniority, rates, location, availability).

Examples:
"Senior React developer with $80/hr rate in San Francisco" ->
  {"specializations":["frontend_development","web_development"],"experience_levels":["expert"],"min_rate":6800,"max_rate":9200,"location":"San Francisco","skills":["React"],"cleanQuery":"React developer"}
"junior logo designer, remote, available now" ->
  {"specializations":["graphic_design"],"experience_levels":["entry"],"location":"Remote","available_only":true,"cleanQuery":"logo designer"}
"someone who has built recommendation systems" ->
  {"specializations":["machine_learning"],"cleanQuery":"someone who has built recommendation systems"}`

var extractTool = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name:        extractFunctionName,
		Description: "Extract structured freelancer search filters and a cleaned query from a natural language search",
		Parameters:  extractionSchema(),
	},
}

func extractionSchema() map[string]any {
	specializations := make([]string, len(models.AllSpecializations))
	for i, s := range models.AllSpecializations {
		specializations[i] = string(s)
	}
	levels := make([]string, len(models.AllExperienceLevels))
	for i, l := range models.AllExperienceLevels {
		levels[i] = string(l)
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"specializations": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "enum": specializations},
				"description": "Freelancer domains the query asks for",
			},
			"experience_levels": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "enum": levels},
				"description": "Seniority tiers",
			},
			"min_rate": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Minimum hourly rate in cents",
			},
			"max_rate": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Maximum hourly rate in cents",
			},
			"location": map[string]any{
				"type":        "string",
				"description": "City, country or Remote",
			},
			"skills": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Technologies or tools named in the query",
			},
			"availability_hours_per_week": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Required weekly availability in hours",
			},
			"available_only": map[string]any{
				"type":        "boolean",
				"description": "Only freelancers available now",
			},
			"cleanQuery": map[string]any{
				"type":        "string",
				"description": "The query with filter phrases removed, typos corrected",
			},
		},
		"required": []string{"cleanQuery"},
	}
}
