package service

import (
	"fmt"
	"strings"
)

// NoEvidenceContext stands in for the evidence block when nothing was retrieved
const NoEvidenceContext = "(No relevant legal provisions available)"

const evidenceDelimiter = "--------------------------------------------------"

// BuildContext renders the evidence as delimited blocks keyed by law id.
// An empty set renders as NoEvidenceContext, never as an empty string.
func BuildContext(evidence EvidenceSet) string {
	if evidence.Status() == NoEvidence {
		return NoEvidenceContext
	}

	var b strings.Builder
	for _, c := range evidence.Candidates {
		law := c.Law
		fmt.Fprintf(&b, "[LAW ID: %d]\n", law.ID)
		fmt.Fprintf(&b, "- Title: %s\n", law.Title)
		fmt.Fprintf(&b, "- Article: %s\n", law.ArticleNo)
		// a delimiter line inside the content would split the block
		content := strings.ReplaceAll(strings.TrimSpace(law.Content), evidenceDelimiter, "- - -")
		fmt.Fprintf(&b, "- Content: %s\n", content)
		b.WriteString(evidenceDelimiter)
		b.WriteString("\n")
	}
	return b.String()
}
