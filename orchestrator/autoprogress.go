package orchestrator

import "math/rand/v2"

// FollowUpPrompts are the canned prompts used to keep a multi-participant
// conversation going without user input.
var FollowUpPrompts = []string{
	"What are your thoughts on that perspective?",
	"Can you elaborate on that point?",
	"How would you approach this differently?",
	"What questions does this raise for you?",
	"Do you see any potential challenges with that approach?",
}

// FollowUpPrompt picks one of FollowUpPrompts. A nil r uses the global source.
func FollowUpPrompt(r *rand.Rand) string {
	if r == nil {
		return FollowUpPrompts[rand.IntN(len(FollowUpPrompts))]
	}
	return FollowUpPrompts[r.IntN(len(FollowUpPrompts))]
}
