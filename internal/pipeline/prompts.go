package pipeline

import "strings"

// SelfIntroAnswer is the fixed reply to self-identification questions. It is
// the one answer allowed to bypass grounding verification.
const SelfIntroAnswer = "I am an intelligent assistant designed to answer questions about the vector databases paper."

const draftSystemPrompt = `You are a drafting agent answering a question in an ongoing conversation.

Instructions:
- Use the conversation history to understand references ("it", "that", "the method mentioned earlier").
- Provide answers that build on previous turns and reference previous answers when relevant.
- Avoid repeating information already provided unless specifically asked.
- Use ONLY the information in the CONTEXT section to answer.
- If the context does not contain enough information, explicitly state that you cannot answer.`

const verifySystemPrompt = `You are a verification agent. Check the draft answer against the original context and eliminate any unsupported claims.

Instructions:
- Compare every claim in the draft answer against the provided context.
- Remove or correct any information not supported by the context.
- Ensure the final answer is accurate and grounded in the source material.
- Return ONLY the final, corrected answer text (no explanations or meta-commentary).`

var selfIntroPhrases = []string{
	"who are you",
	"introduce yourself",
	"what are you",
	"tell me about yourself",
}

// isSelfIntroQuestion reports whether the question asks the assistant to
// identify itself. Detected in code rather than left to the model so the
// fixed answer is returned verbatim.
func isSelfIntroQuestion(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, phrase := range selfIntroPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
