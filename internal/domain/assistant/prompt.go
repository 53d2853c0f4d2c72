package assistant

import "fmt"

const systemPrompt = "Tu es un assistant expert en urbanisme et architecture. " +
	"Utilise le contexte fourni pour répondre de manière précise."

// buildPrompt assembles the user prompt. Without retrieved context the
// question goes through bare, matching the no-context LLM call.
func buildPrompt(question, contextBlock string) string {
	if contextBlock == "" {
		return question
	}
	return fmt.Sprintf("Contexte:\n%s\n\nQuestion: %s", contextBlock, question)
}
