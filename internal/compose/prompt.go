package compose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atliq/coldreach/internal/extract"
)

// buildEmailPrompt renders the cold email prompt for a single job. The job
// is serialized as JSON so role, experience, skills, and description all
// reach the model, and the retrieved portfolio links are offered for the
// model to pick the most relevant ones from.
func buildEmailPrompt(p Persona, job extract.JobPosting) (string, error) {
	jobJSON, err := json.Marshal(struct {
		Role        string   `json:"role"`
		Experience  string   `json:"experience"`
		Skills      []string `json:"skills"`
		Description string   `json:"description"`
	}{job.Role, job.Experience, job.Skills, job.Description})
	if err != nil {
		return "", fmt.Errorf("marshalling job: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("### JOB DESCRIPTION:\n")
	sb.Write(jobJSON)
	sb.WriteString("\n\n### INSTRUCTION:\n")
	fmt.Fprintf(&sb, "You are %s, a business development executive at %s. %s %s\n",
		p.Name, p.Company, p.Company+" is "+p.CompanyInfo,
		"Over our experience, we have empowered numerous enterprises with tailored solutions, "+
			"fostering scalability, process optimization, cost reduction, and heightened overall efficiency.")
	fmt.Fprintf(&sb, "Your job is to write a cold email to the client regarding the job mentioned above "+
		"describing the capability of %s in fulfilling their needs.\n", p.Company)
	if len(job.Links) > 0 {
		fmt.Fprintf(&sb, "Also add the most relevant ones from the following links to showcase %s's portfolio: %s\n",
			p.Company, strings.Join(job.Links, ", "))
	}
	fmt.Fprintf(&sb, "Remember you are %s, BDE at %s.\n", p.Name, p.Company)
	sb.WriteString("Do not provide a preamble.\n")
	sb.WriteString("### EMAIL (NO PREAMBLE):\n")
	return sb.String(), nil
}
