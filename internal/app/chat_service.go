package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contextchat/internal/ai"
	"contextchat/internal/model"
	"contextchat/internal/pkg/logger"
)

var (
	ErrInvalidInput         = errors.New("missing required parameters")
	ErrProjectNotFound      = errors.New("project not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUserTurnNotRecorded  = errors.New("failed to store user message")
	ErrAssistantNotRecorded = errors.New("assistant reply could not be recorded")
)

// Fallback texts returned in place of a model answer when the completion
// call fails. The user always sees one of these or the real answer, never a
// raw upstream error.
const (
	fallbackQuota   = "The provider quota has been exceeded. Please update the LLM API key credential and try again."
	fallbackGeneric = "The AI is temporarily unavailable. Please try again later."
)

// legacyModelMap normalizes retired model names at call time; stored project
// configuration is never rewritten.
var legacyModelMap = map[string]string{
	"gpt-4": "gpt-4o-mini",
}

type ProjectStore interface {
	GetByIDAndUserID(projectID, userID string) (*model.Project, error)
}

type MessageStore interface {
	Create(message *model.Message) error
	ListByConversationID(conversationID string, limit int) ([]model.Message, error)
}

type ConversationStore interface {
	GetByIDAndUserID(conversationID, userID string) (*model.Conversation, error)
}

// Completer is the external completion collaborator.
type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// FileContextSource supplies each project file's cached-or-extracted text.
type FileContextSource interface {
	GetOrExtract(ctx context.Context, file *model.FileUpload) (text string, degraded bool, err error)
}

type HistoryCache interface {
	GetHistory(ctx context.Context, conversationID string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, conversationID string, messages []model.Message) error
	DeleteHistory(ctx context.Context, conversationID string) error
	MarkDirty(ctx context.Context, conversationID string) error
	IsDirty(ctx context.Context, conversationID string) (bool, error)
}

type ChatService struct {
	projectRepo      ProjectStore
	conversationRepo ConversationStore
	messageRepo      MessageStore
	fileRepo         FileStore
	files            FileContextSource
	historyCache     HistoryCache
	llm              Completer
	llmCfg           ai.ChatConfig
	log              *logger.Logger
}

func NewChatService(
	projectRepo ProjectStore,
	conversationRepo ConversationStore,
	messageRepo MessageStore,
	fileRepo FileStore,
	files FileContextSource,
	historyCache HistoryCache,
	llm Completer,
	llmCfg ai.ChatConfig,
	log *logger.Logger,
) *ChatService {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatService{
		projectRepo:      projectRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		fileRepo:         fileRepo,
		files:            files,
		historyCache:     historyCache,
		llm:              llm,
		llmCfg:           llmCfg,
		log:              log,
	}
}

type ChatInput struct {
	Message        string
	ConversationID string
	ProjectID      string
	UserID         string
}

type ChatResult struct {
	Message  string
	Fallback bool
}

// Send runs one chat turn end to end: project lookup, context assembly,
// completion, turn persistence. A completion failure never surfaces as an
// error; the caller always gets a turn to show. Every validated request
// appends exactly one user turn followed by exactly one assistant turn.
func (s *ChatService) Send(ctx context.Context, input ChatInput) (*ChatResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" || input.ConversationID == "" || input.ProjectID == "" || input.UserID == "" {
		return nil, ErrInvalidInput
	}

	project, err := s.projectRepo.GetByIDAndUserID(input.ProjectID, input.UserID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	history, err := s.loadHistory(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}

	fileContexts := s.collectFileContexts(ctx, input.ProjectID, input.UserID)
	promptMessages := AssembleContext(project.SystemPrompt, fileContexts, history, message)

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.ConversationID)
		_ = s.historyCache.DeleteHistory(ctx, input.ConversationID)
	}

	// The user turn must be durable before the model is called; an answer to
	// an unrecorded question is worthless on the next load.
	userTurn := &model.Message{
		ConversationID: input.ConversationID,
		UserID:         input.UserID,
		Role:           model.RoleUser,
		Content:        message,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.Create(userTurn); err != nil {
		s.log.Error("store user turn failed", "conversation_id", input.ConversationID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUserTurnNotRecorded, err)
	}

	assistantText, fallback := s.complete(ctx, project, promptMessages)

	assistantTurn := &model.Message{
		ConversationID: input.ConversationID,
		UserID:         input.UserID,
		Role:           model.RoleAssistant,
		Content:        assistantText,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.Create(assistantTurn); err != nil {
		// The answer exists but will not be visible on next load; surface it
		// loudly instead of pretending the turn completed.
		s.log.Error("store assistant turn failed",
			"conversation_id", input.ConversationID, "fallback", fallback, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAssistantNotRecorded, err)
	}

	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, input.ConversationID)
	}

	return &ChatResult{Message: assistantText, Fallback: fallback}, nil
}

// complete calls the external model and converts every failure into a fixed
// fallback message. It does not retry and never returns an error.
func (s *ChatService) complete(ctx context.Context, project *model.Project, messages []ai.ChatMessage) (string, bool) {
	cfg := s.llmCfg
	cfg.Model = s.resolveModel(project.LLMModel)

	text, err := s.llm.Complete(ctx, cfg, messages)
	if err == nil {
		return text, false
	}

	s.log.Error("completion call failed", "model", cfg.Model, "error", err)
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) && apiErr.IsQuota() {
		return fallbackQuota, true
	}
	return fallbackGeneric, true
}

func (s *ChatService) resolveModel(configured string) string {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return s.llmCfg.Model
	}
	if current, ok := legacyModelMap[configured]; ok {
		return current
	}
	return configured
}

// collectFileContexts gathers each project file's contribution. Files are
// optional and isolated: a lookup or download failure degrades that file's
// entry without failing the request.
func (s *ChatService) collectFileContexts(ctx context.Context, projectID, userID string) []FileContext {
	files, err := s.fileRepo.ListByProjectIDAndUserID(projectID, userID)
	if err != nil {
		s.log.Warn("list project files failed", "project_id", projectID, "error", err)
		return nil
	}

	contexts := make([]FileContext, 0, len(files))
	for i := range files {
		file := &files[i]
		text, degraded, err := s.files.GetOrExtract(ctx, file)
		if err != nil {
			s.log.Warn("file context unavailable", "file_id", file.ID, "error", err)
			contexts = append(contexts, FileContext{
				Filename: file.Filename,
				FileType: file.FileType,
				Degraded: true,
			})
			continue
		}
		if text == "" {
			continue
		}
		contexts = append(contexts, FileContext{
			Filename: file.Filename,
			FileType: file.FileType,
			Content:  text,
			Degraded: degraded,
		})
	}
	return contexts
}

func (s *ChatService) loadHistory(ctx context.Context, conversationID string) ([]model.Message, error) {
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, conversationID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, conversationID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.messageRepo.ListByConversationID(conversationID, 0)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, conversationID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, conversationID, messages)
		}
	}
	return messages, nil
}

// History returns the conversation transcript for the platform UI, cache
// read-through included. Unlike Send, it validates the conversation row.
func (s *ChatService) History(ctx context.Context, userID, conversationID string, limit int) ([]model.Message, error) {
	if userID == "" || conversationID == "" {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetByIDAndUserID(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	history, err := s.loadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return trimMessages(history, limit), nil
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
