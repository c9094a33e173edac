package conversation

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// ExportFormat marks single-conversation export documents.
const ExportFormat = "multi-ai-conversation-v1"

// exportDoc is a conversation plus the export envelope fields.
type exportDoc struct {
	ID           string                    `json:"id"`
	Title        string                    `json:"title"`
	Type         core.ConversationType     `json:"type"`
	Participants []string                  `json:"participants"`
	Messages     []core.Message            `json:"messages"`
	CreatedAt    time.Time                 `json:"createdAt"`
	Metadata     core.ConversationMetadata `json:"metadata"`
	ExportedAt   time.Time                 `json:"exportedAt"`
	Format       string                    `json:"format"`
}

// Export serializes conv as an indented export document.
func Export(conv *core.Conversation, now time.Time) ([]byte, error) {
	c := conv.Clone()
	return json.MarshalIndent(exportDoc{
		ID:           c.ID,
		Title:        c.Title,
		Type:         c.Type,
		Participants: c.Participants,
		Messages:     c.Messages,
		CreatedAt:    c.CreatedAt,
		Metadata:     c.Metadata,
		ExportedAt:   now.UTC(),
		Format:       ExportFormat,
	}, "", "  ")
}

// Decode parses an export document. The format marker and the participant
// invariants are checked; the original id is kept.
func Decode(data []byte) (*core.Conversation, error) {
	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &core.FormatError{Expected: ExportFormat, Err: err}
	}
	if doc.Format != ExportFormat {
		return nil, &core.FormatError{Expected: ExportFormat, Got: doc.Format}
	}
	conv := &core.Conversation{
		ID:           doc.ID,
		Title:        doc.Title,
		Type:         doc.Type,
		Participants: doc.Participants,
		Messages:     doc.Messages,
		CreatedAt:    doc.CreatedAt,
		Metadata:     doc.Metadata,
	}
	if conv.Messages == nil {
		conv.Messages = []core.Message{}
	}
	if err := conv.Validate(); err != nil {
		return nil, err
	}
	return conv, nil
}

// Import decodes an export document, assigns a fresh id and prepends it.
func (s *Store) Import(data []byte) (*core.Conversation, error) {
	conv, err := Decode(data)
	if err != nil {
		return nil, err
	}
	conv.ID = s.opts.NewID()
	if conv.Title == "" {
		conv.Title = core.DefaultTitle(conv.Type)
	}
	if err := s.Add(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

var unsafeFileChars = regexp.MustCompile(`(?i)[^a-z0-9]`)

// FileName returns the download name of an exported conversation:
// the title with non-alphanumerics replaced by "_", then "_<id>.json".
func FileName(conv *core.Conversation) string {
	return unsafeFileChars.ReplaceAllString(conv.GetTitle(), "_") + "_" + conv.ID + ".json"
}
