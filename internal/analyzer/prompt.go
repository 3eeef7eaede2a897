package analyzer

import "fmt"

// The prompt text is an opaque parameter of the pipeline: both halves can be
// overridden from config without touching any analysis logic.

const defaultSystemPrompt = `You are an expert in analyzing search advertisement copy. Provide a detailed analysis based on the given criteria.`

// defaultUserPromptTemplate takes two arguments: the context label (what the
// ads are selling) and the ad copy block.
const defaultUserPromptTemplate = `Analyze the following search ad for %s:

%s

Provide a comprehensive analysis including title analysis, snippet analysis, display URL analysis, ad extensions analysis, keyword relevance and density, call-to-action analysis, and overall ad strength evaluation. Format your response as a JSON object with keys for each analysis component.`

// PromptSet holds the system prompt and user prompt template for one batch.
type PromptSet struct {
	System       string
	UserTemplate string
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() PromptSet {
	return PromptSet{
		System:       defaultSystemPrompt,
		UserTemplate: defaultUserPromptTemplate,
	}
}

// UserPrompt renders the user prompt for one ad copy block.
func (p PromptSet) UserPrompt(contextLabel, adCopy string) string {
	return fmt.Sprintf(p.UserTemplate, contextLabel, adCopy)
}
