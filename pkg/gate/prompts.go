package gate

import (
	"hearth-hq/beacon/pkg/assist"
	"hearth-hq/beacon/pkg/provider"
)

// systemPrompts give the model a role per request category. The general
// prompt doubles as the fallback.
var systemPrompts = map[assist.Category]string{
	assist.CategoryRecipe: "You are a family cooking assistant. Suggest practical recipes " +
		"using common ingredients, with clear steps and realistic prep times. " +
		"Respect any dietary restrictions mentioned.",
	assist.CategoryMealPlan: "You are a family meal planning assistant. Build balanced weekly " +
		"plans that reuse ingredients across meals and keep weeknight cooking simple.",
	assist.CategoryTaskSuggestion: "You are a household organization assistant. Suggest concrete, " +
		"actionable tasks and chores, sized so a family member can finish them in one sitting.",
	assist.CategoryGeneral: "You are a helpful assistant for a family organizer app. " +
		"Answer briefly and practically.",
}

// buildMessages assembles the conversation for the upstream call: the
// category's system prompt, the caller-supplied context as a prior user
// turn when present, and the prompt itself last.
func buildMessages(req *assist.Request) []provider.Message {
	system, ok := systemPrompts[req.Category]
	if !ok {
		system = systemPrompts[assist.CategoryGeneral]
	}

	messages := make([]provider.Message, 0, 3)
	messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: system})
	if req.Context != "" {
		messages = append(messages, provider.Message{
			Role:    provider.RoleUser,
			Content: "Background: " + req.Context,
		})
	}
	messages = append(messages, provider.Message{Role: provider.RoleUser, Content: req.Prompt})
	return messages
}
