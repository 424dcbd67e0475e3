package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/insightportal/attrition/internal/store"
)

const snippetLen = 200

// NoKeyReply is returned when no completion API key is configured.
const NoKeyReply = "⚠️ API key not configured. Please add your API key to the .env file."

// Source describes where a quoted piece of context came from.
type Source struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Reply is the assistant's answer plus the context it was grounded on.
type Reply struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
}

// Service answers questions about the roster and the knowledge base.
type Service struct {
	kb    []Document
	store store.Store
	llm   LLMClient
}

// NewService loads the static knowledge base once; roster summaries are
// rebuilt per question so they track the live roster. A nil llm means no API
// key is configured and every question gets the canned reply.
func NewService(kbDir string, st store.Store, llm LLMClient) (*Service, error) {
	kb, err := LoadKB(kbDir)
	if err != nil {
		return nil, err
	}
	log.Printf("[chat] loaded %d knowledge base sections from %s", len(kb), kbDir)
	return &Service{kb: kb, store: st, llm: llm}, nil
}

// Ask retrieves relevant context for the message and asks the completion
// model to answer with it.
func (s *Service) Ask(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, fmt.Errorf("message cannot be empty")
	}
	if s.llm == nil {
		return Reply{Response: NoKeyReply, Sources: []Source{}}, nil
	}

	docs := s.kb
	if s.store != nil {
		rosterDocs, err := RosterDocs(ctx, s.store)
		if err != nil {
			log.Printf("[chat] roster summary unavailable: %v", err)
		} else {
			docs = append(append([]Document{}, s.kb...), rosterDocs...)
		}
	}

	relevant := Retrieve(message, docs)
	sources := make([]Source, 0, len(relevant))
	contextParts := make([]string, 0, len(relevant))
	for _, doc := range relevant {
		contextParts = append(contextParts, doc.Content)
		sources = append(sources, Source{Source: doc.Source, Content: snippet(doc.Content)})
	}

	answer, err := s.llm.Complete(ctx, buildPrompt(message, strings.Join(contextParts, "\n\n")))
	if err != nil {
		return Reply{}, fmt.Errorf("generating answer: %w", err)
	}
	return Reply{Response: answer, Sources: sources}, nil
}

func buildPrompt(message, context string) string {
	return fmt.Sprintf(`You are an AI assistant for an Employee Insight Portal. Use the following context to answer the user's question.

Context:
%s

User Question: %s

Answer the question based on the context provided. Be helpful, concise, and accurate.`, context, message)
}

func snippet(content string) string {
	if len(content) > snippetLen {
		return content[:snippetLen] + "..."
	}
	return content
}
