package service

import "fmt"

const (
	persona = "You are 'Global Legal Assistant', a legal AI specialist who explains statutes objectively."

	sentenceBound = "3 to 5 sentences"
)

// PromptComposer builds the generation instructions for both pipelines
type PromptComposer struct {
	outputLanguage string
	refusalPhrase  string
}

// NewPromptComposer creates a composer that writes in outputLanguage and
// requires refusalPhrase verbatim when the evidence cannot answer
func NewPromptComposer(outputLanguage, refusalPhrase string) *PromptComposer {
	return &PromptComposer{
		outputLanguage: outputLanguage,
		refusalPhrase:  refusalPhrase,
	}
}

// RefusalPhrase returns the canonical refusal sentence
func (c *PromptComposer) RefusalPhrase() string {
	return c.refusalPhrase
}

// ComposeChatPrompt builds a free-text answer prompt over one evidence block
func (c *PromptComposer) ComposeChatPrompt(query, evidence string) string {
	return fmt.Sprintf(`%s
Answer the user's question using ONLY the EVIDENCE below. Never use outside knowledge.

EVIDENCE:
%s

USER QUESTION:
%s

INSTRUCTIONS:
1. Topic check first: compare the intent of the USER QUESTION with the subject of the EVIDENCE.
   If the EVIDENCE is about an unrelated topic, or it is not sufficient to answer, reply with exactly
   "%s" and nothing else. Do not paraphrase it, do not explain why.
2. Build the answer only from what the EVIDENCE states. Do not invent provisions, penalties or numbers.
3. Cite the provision you rely on inside the sentence (e.g. "Under Article 44 ...").
4. Write in natural %s regardless of the language of the EVIDENCE. Translate the evidence into prose;
   do not quote it verbatim.
5. Keep the answer to %s in a clear, professional tone.
6. Output plain text only. No markdown, no headings, no lists.

ANSWER:`,
		persona,
		evidence,
		query,
		c.refusalPhrase,
		c.outputLanguage,
		sentenceBound,
	)
}

// ComposeComparePrompt builds the two-jurisdiction comparison prompt. The model
// must answer with a bare JSON object holding summary_1, summary_2, common and diff.
func (c *PromptComposer) ComposeComparePrompt(query, evidence1, evidence2 string) string {
	return fmt.Sprintf(`%s
You compare the laws of two jurisdictions. Use ONLY the EVIDENCE below. Never use outside knowledge.

EVIDENCE 1 (base jurisdiction):
%s

EVIDENCE 2 (compared jurisdiction):
%s

USER QUESTION:
%s

GUIDELINES:
1. Topic check (highest priority): before writing anything, check EVIDENCE 1 and EVIDENCE 2 separately
   against the intent of the USER QUESTION. If one side's evidence is logically unrelated to the question
   (e.g. the question is about food and the evidence is a traffic act), do NOT summarize that side.
   Put exactly "%s" in that side's field instead.
2. Refusal phrase (strict): whenever a field cannot be answered, output "%s" character for character.
   Do not explain, do not reword it.
3. Summaries: only when the topic matches, summarize each jurisdiction's law in %s.
4. Comparison: derive the common points ("common") and the differences ("diff") with clear reasoning.
   If either side could not be summarized, "common" and "diff" must also be exactly "%s".
5. Grounding: never invent content; name the article you rely on inside the sentence
   (e.g. "Under Article 44 ...").
6. Language: write natural %s regardless of the language of the EVIDENCE. Translate, do not quote verbatim.
7. Format: output ONLY the JSON object below. No markdown code fences, no text before or after it.

{
    "summary_1": "summary of the base jurisdiction's law, or the refusal phrase",
    "summary_2": "summary of the compared jurisdiction's law, or the refusal phrase",
    "common": "what the two laws have in common, or the refusal phrase",
    "diff": "how the two laws differ, or the refusal phrase"
}`,
		persona,
		evidence1,
		evidence2,
		query,
		c.refusalPhrase,
		c.refusalPhrase,
		sentenceBound,
		c.refusalPhrase,
		c.outputLanguage,
	)
}
