package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/normalization"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/types"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrEmptyMessage    = errors.New("message content is empty")
)

// ChatReply is what a turn through the assistant produces.
type ChatReply struct {
	SessionID uuid.UUID          `json:"session_id"`
	Message   *types.ChatMessage `json:"message"`
}

type ChatService interface {
	SendMessage(ctx context.Context, sessionID *uuid.UUID, content, requestedModel string, imageURLs []string) (ChatReply, error)
	ListSessions(ctx context.Context) ([]*types.ChatSession, error)
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*types.ChatMessage, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
}

type chatService struct {
	db              *gorm.DB
	log             *logger.Logger
	chatSessionRepo repos.ChatSessionRepo
	chatMessageRepo repos.ChatMessageRepo
	openAIService   OpenAIService

	now func() time.Time
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	chatSessionRepo repos.ChatSessionRepo,
	chatMessageRepo repos.ChatMessageRepo,
	openAIService OpenAIService,
) ChatService {
	serviceLog := log.With("service", "ChatService")
	return &chatService{
		db:              db,
		log:             serviceLog,
		chatSessionRepo: chatSessionRepo,
		chatMessageRepo: chatMessageRepo,
		openAIService:   openAIService,
		now:             time.Now,
	}
}

func (cs *chatService) SendMessage(ctx context.Context, sessionID *uuid.UUID, content, requestedModel string, imageURLs []string) (ChatReply, error) {
	cs.log.Info("Starting SendMessage now...")

	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return ChatReply{}, fmt.Errorf("no request data found in context")
	}
	content = normalization.ParseInputString(content)
	if content == "" {
		return ChatReply{}, ErrEmptyMessage
	}
	model := ChatModelForPlan(rd.Plan, requestedModel)

	//1) Resolve Or Create The Session
	session, err := cs.resolveSession(ctx, rd, sessionID, content, model)
	if err != nil {
		return ChatReply{}, err
	}

	//2) Persist The User Message
	userMsg := &types.ChatMessage{
		ID:        uuid.New(),
		SessionID: session.ID,
		UserID:    &rd.UserID,
		Role:      types.RoleUser,
		Content:   content,
	}
	if len(imageURLs) > 0 {
		attachments := make([]types.Attachment, 0, len(imageURLs))
		for _, u := range imageURLs {
			attachments = append(attachments, types.Attachment{URL: u, Kind: "image"})
		}
		raw, mErr := json.Marshal(attachments)
		if mErr != nil {
			return ChatReply{}, fmt.Errorf("failed to marshal attachments: %w", mErr)
		}
		userMsg.Attachments = datatypes.JSON(raw)
	}
	if _, err := cs.chatMessageRepo.Create(ctx, nil, []*types.ChatMessage{userMsg}); err != nil {
		cs.log.Warn("Failed to persist user message, cannot proceed. Returning error.", "error", err)
		return ChatReply{}, fmt.Errorf("failed to persist user message: %w", err)
	}

	//3) Forward The Full Transcript Upstream
	history, err := cs.chatMessageRepo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		cs.log.Warn("Failed to load transcript, cannot proceed. Returning error.", "error", err)
		return ChatReply{}, fmt.Errorf("failed to load transcript: %w", err)
	}
	turns := make([]ChatTurn, 0, len(history))
	for _, m := range history {
		turn := ChatTurn{Role: m.Role, Content: m.Content}
		if len(m.Attachments) > 0 {
			var attachments []types.Attachment
			if uErr := json.Unmarshal(m.Attachments, &attachments); uErr == nil {
				for _, a := range attachments {
					if a.Kind == "image" {
						turn.ImageURLs = append(turn.ImageURLs, a.URL)
					}
				}
			}
		}
		turns = append(turns, turn)
	}
	answer, err := cs.openAIService.ChatCompletion(ctx, model, turns)
	if err != nil {
		cs.log.Warn("Upstream chat completion failed", "error", err)
		return ChatReply{}, fmt.Errorf("chat completion failed: %w", err)
	}

	//4) Persist And Return The Assistant Message
	assistantMsg := &types.ChatMessage{
		ID:        uuid.New(),
		SessionID: session.ID,
		Role:      types.RoleAssistant,
		Content:   answer,
	}
	if _, err := cs.chatMessageRepo.Create(ctx, nil, []*types.ChatMessage{assistantMsg}); err != nil {
		cs.log.Warn("Failed to persist assistant message, cannot proceed. Returning error.", "error", err)
		return ChatReply{}, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	cs.log.Info("Successfully completed chat turn :)", "sessionID", session.ID, "model", model)
	return ChatReply{SessionID: session.ID, Message: assistantMsg}, nil
}

func (cs *chatService) resolveSession(ctx context.Context, rd *requestdata.RequestData, sessionID *uuid.UUID, content, model string) (*types.ChatSession, error) {
	if sessionID != nil && *sessionID != uuid.Nil {
		found, err := cs.chatSessionRepo.GetByIDs(ctx, nil, []uuid.UUID{*sessionID})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chat session: %w", err)
		}
		if len(found) == 0 || found[0].UserID != rd.UserID {
			return nil, ErrSessionNotFound
		}
		return found[0], nil
	}

	session := &types.ChatSession{
		ID:        uuid.New(),
		UserID:    rd.UserID,
		Title:     SessionTitle(content),
		ModelName: model,
	}
	created, err := cs.chatSessionRepo.Create(ctx, nil, []*types.ChatSession{session})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	cs.log.Info("Created new chat session", "sessionID", created[0].ID)
	return created[0], nil
}

// SessionTitle derives a session title from the first words of the
// opening message.
func SessionTitle(content string) string {
	words := strings.Fields(content)
	if len(words) > 10 {
		words = words[:10]
	}
	title := strings.Join(words, " ")
	if len(title) > 80 {
		title = title[:80]
	}
	return title
}

func (cs *chatService) ListSessions(ctx context.Context) ([]*types.ChatSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no request data found in context")
	}
	return cs.chatSessionRepo.GetByUserID(ctx, nil, rd.UserID)
}

func (cs *chatService) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*types.ChatMessage, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no request data found in context")
	}
	if _, err := cs.ownedSession(ctx, rd, sessionID); err != nil {
		return nil, err
	}
	return cs.chatMessageRepo.GetBySessionID(ctx, nil, sessionID)
}

func (cs *chatService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	cs.log.Info("Starting DeleteSession now...")

	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no request data found in context")
	}
	if _, err := cs.ownedSession(ctx, rd, sessionID); err != nil {
		return err
	}
	return cs.inTransaction(ctx, func(tx *gorm.DB) error {
		if err := cs.chatMessageRepo.FullDeleteBySessionIDs(ctx, tx, []uuid.UUID{sessionID}); err != nil {
			return fmt.Errorf("failed to delete session messages: %w", err)
		}
		if err := cs.chatSessionRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{sessionID}); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}

func (cs *chatService) inTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if cs.db == nil {
		return fn(nil)
	}
	return cs.db.WithContext(ctx).Transaction(fn)
}

func (cs *chatService) ownedSession(ctx context.Context, rd *requestdata.RequestData, sessionID uuid.UUID) (*types.ChatSession, error) {
	found, err := cs.chatSessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat session: %w", err)
	}
	if len(found) == 0 || found[0].UserID != rd.UserID {
		return nil, ErrSessionNotFound
	}
	return found[0], nil
}
