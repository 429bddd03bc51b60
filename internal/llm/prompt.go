package llm

// tableDetectionPrompt asks a general-purpose model for tables as JSON.
func tableDetectionPrompt(sampleText string) string {
	return "You are an assistant that identifies tables in documents along with the page number and title.\n" +
		"Return a JSON list like:\n" +
		`[{"title": "<table title>", "page": <page>, "rows": ["<row text>"]}]` + "\n" +
		"Return ONLY the JSON list, no prose.\n" +
		"Document snippet:\n---\n" + sampleText + "\n---"
}
