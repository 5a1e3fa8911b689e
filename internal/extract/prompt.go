package extract

import "strings"

// buildExtractionPrompt renders the job extraction prompt around the
// scraped page text. The sectioned layout keeps the model from echoing
// instructions back into the JSON.
func buildExtractionPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("### SCRAPED TEXT FROM WEBSITE:\n")
	sb.WriteString(text)
	sb.WriteString("\n### INSTRUCTION:\n")
	sb.WriteString("The scraped text is from the career's page of a website. ")
	sb.WriteString("Your job is to extract the job postings and return them in JSON format ")
	sb.WriteString("containing the following keys: `role`, `experience`, `skills` and `description`. ")
	sb.WriteString("Only return the valid JSON.\n")
	sb.WriteString("### VALID JSON (NO PREAMBLE):\n")
	return sb.String()
}
