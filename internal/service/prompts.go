package service

import (
	"fmt"
	"strings"

	"finwiz/internal/models"
)

const adviceFallback = "I'm sorry, I encountered an issue while generating advice. Please try again."

func buildCategorizationPrompt(description string) string {
	return fmt.Sprintf(`You are an expert financial assistant. Categorize the following transaction description into exactly one of these categories: %s.
Description: '%s'
Respond with a JSON object: {"category": <category>, "confidence": <confidence_score between 0 and 1>}
Do not include any text outside of the JSON object.`,
		strings.Join(models.Categories, ", "),
		description,
	)
}

func buildBatchCategorizationPrompt(descriptions []string) string {
	var list strings.Builder
	for _, d := range descriptions {
		fmt.Fprintf(&list, "- %q\n", d)
	}

	return fmt.Sprintf(`You are an expert financial assistant. Your task is to categorize a list of bank transaction descriptions.
For each description, assign it one of the following categories: %s.
If a category is not obvious, use '%s'.

Analyze the following list of transaction descriptions:
%s
Return your response as a single JSON array of objects. Each object should have two keys: "description" and "category".
For example: [{"description": "AMAZON.COM", "category": "Shopping"}, {"description": "UBER EATS", "category": "Restaurants"}]
Do not include any text outside of the JSON array.`,
		strings.Join(models.Categories, ", "),
		models.CategoryMiscellaneous,
		list.String(),
	)
}

func buildAdvicePrompt(itemization, userPrompt string) string {
	system := `You are "FinWiz", a friendly and insightful AI financial advisor.
Your tone should be encouraging, clear, and helpful. Avoid jargon.
You will be given a list of a user's recent financial transactions and a specific question or prompt from them.
Analyze the provided transactions to answer the user's prompt. Provide actionable insights and summaries.
When asked for a summary or category totals, compute them directly from the transactions.
When asked about future or next-period expenses, give an explicit forecast: extrapolate from recurring and habitual categories and state the assumptions you made.
Be concise but thorough. Use markdown for formatting (like lists or bold text) to improve readability.

Here are the user's transactions:
` + itemization

	return system + "\n\nUser's request: " + userPrompt
}
