package app

import (
	"strings"

	"contextchat/internal/ai"
	"contextchat/internal/model"
)

const defaultInstructions = "You are a helpful AI assistant."

// policyNote keeps the model from flatly refusing documents whose text was
// only partially available: gaps must be attributed to upstream size limits,
// with a request for smaller excerpts.
const policyNote = "\n\nPolicy: If any file (especially PDFs) cannot be processed or content is missing, do NOT say you cannot read the document. Instead say that file/token limits were hit for large documents and ask the user for specific sections or smaller excerpts."

const (
	filesContextHeader   = "\n\n=== Available Files Context ===\n"
	filesContextFooter   = "=== End Files Context ===\n\nYou can reference these files in your responses when relevant to the user's questions.\n"
	filesDegradedNote    = "\nNote: Some documents could not be fully processed. If I cannot reference content from them, it is likely due to file/token limits for large documents.\n"
	fileBlockHeaderOpen  = "\n--- File: "
	fileBlockHeaderClose = " ---\n"
)

// FileContext is one file's contribution to the assembled context. Content
// holds cached or freshly extracted text; Degraded marks files whose true
// text could not be obtained this request.
type FileContext struct {
	Filename string
	FileType string
	Content  string
	Degraded bool
}

// AssembleContext builds the ordered role/text sequence for one completion
// call: a single system block (instructions, policy note, file context),
// the prior turns in chronological order, and the new user message last.
func AssembleContext(instructions string, files []FileContext, history []model.Message, newMessage string) []ai.ChatMessage {
	system := strings.TrimSpace(instructions)
	if system == "" {
		system = defaultInstructions
	}

	var sb strings.Builder
	sb.WriteString(system)
	sb.WriteString(policyNote)
	sb.WriteString(buildFileContext(files))

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: sb.String()})
	for _, turn := range history {
		role := turn.Role
		if role == "" {
			role = model.RoleUser
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: model.RoleUser, Content: newMessage})
	return messages
}

func buildFileContext(files []FileContext) string {
	if len(files) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(filesContextHeader)

	degraded := false
	for _, f := range files {
		if f.Degraded {
			degraded = true
		}
		if f.Content == "" {
			continue
		}
		sb.WriteString(fileBlockHeaderOpen)
		sb.WriteString(f.Filename)
		sb.WriteString(" (")
		sb.WriteString(f.FileType)
		sb.WriteString(")")
		sb.WriteString(fileBlockHeaderClose)
		sb.WriteString(f.Content)
		sb.WriteString("\n")
	}
	if degraded {
		sb.WriteString(filesDegradedNote)
	}
	sb.WriteString(filesContextFooter)
	return sb.String()
}
