package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"sync"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/apperror"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/extract"
	"ai-docchat-be/pkg/llm"

	"github.com/google/uuid"
)

// Broadcaster fans a payload out to every connection joined to a room.
// Implemented by the websocket hub.
type Broadcaster interface {
	BroadcastToRoom(roomID uuid.UUID, data []byte)
}

// ChatSession is the per-connection state: resolved room and users plus the
// conversation seeded from the context window at admission. It lives only as
// long as the connection.
type ChatSession struct {
	Room      *entity.ChatRoom
	User      *entity.User
	Assistant *entity.User

	history []llm.Message
}

type IChatService interface {
	// Admit resolves the room (creating it if needed), the authenticated
	// user and the assistant identity, and seeds the session conversation
	// from the room's recent history.
	Admit(ctx context.Context, roomParam string, userId uuid.UUID) (*ChatSession, error)

	// HandleInbound processes one inbound frame end to end: persist the
	// user's message (document text substituted), request a reply, persist
	// it under the assistant identity, and broadcast the reply to the room.
	HandleInbound(ctx context.Context, session *ChatSession, raw []byte) (*entity.ChatMessage, error)
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	roomService IRoomService
	history     IHistoryService
	extractor   *extract.Pipeline
	llmProvider llm.LLMProvider
	publisher   IPublisherService
	broadcaster Broadcaster
	uploads     *UploadStore
	logger      logger.ILogger

	assistantMu sync.Mutex
	assistant   *entity.User
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	roomService IRoomService,
	history IHistoryService,
	extractor *extract.Pipeline,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	broadcaster Broadcaster,
	uploads *UploadStore,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		roomService: roomService,
		history:     history,
		extractor:   extractor,
		llmProvider: llmProvider,
		publisher:   publisher,
		broadcaster: broadcaster,
		uploads:     uploads,
		logger:      log,
	}
}

// resolveAssistant looks up the well-known assistant account. Only a
// successful lookup is cached; a failure is retried on the next admission.
func (s *chatService) resolveAssistant(ctx context.Context) (*entity.User, error) {
	s.assistantMu.Lock()
	defer s.assistantMu.Unlock()

	if s.assistant != nil {
		return s.assistant, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx,
		specification.ByUsername{Username: constant.AssistantUsername},
	)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &apperror.NotFoundError{Entity: "assistant user"}
	}

	s.assistant = user
	return user, nil
}

func (s *chatService) Admit(ctx context.Context, roomParam string, userId uuid.UUID) (*ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &apperror.AuthError{Reason: "unauthenticated"}
	}

	assistant, err := s.resolveAssistant(ctx)
	if err != nil {
		return nil, err
	}

	room, err := s.roomService.ResolveOrCreate(ctx, roomParam, userId)
	if err != nil {
		return nil, err
	}

	history, err := s.history.LoadContext(ctx, room.Id, constant.ContextWindowLimit)
	if err != nil {
		return nil, err
	}

	return &ChatSession{
		Room:      room,
		User:      user,
		Assistant: assistant,
		history:   history,
	}, nil
}

func (s *chatService) HandleInbound(ctx context.Context, session *ChatSession, raw []byte) (*entity.ChatMessage, error) {
	var frame dto.InboundChatFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, &apperror.ValidationError{Reason: "malformed frame"}
	}
	if frame.Message == "" {
		return nil, &apperror.ValidationError{Reason: "missing message"}
	}

	document := s.decodeDocument(&frame)

	// Two-phase persistence: the content is final before the insert, the
	// save itself has no extraction side effects.
	content := s.extractor.BuildMessageContent(ctx, frame.Message, document)

	userMsg := &entity.ChatMessage{
		ChatRoomId: session.Room.Id,
		UserId:     session.User.Id,
		Role:       entity.MessageRoleUser,
		Content:    content,
	}
	s.attachDocument(userMsg, &frame, document)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, err
	}
	s.publishActivity(ctx, session.Room.Id, userMsg.Id)

	session.history = append(session.history, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: content,
	})

	// The user's message is durable by now; a provider failure propagates
	// without corrupting room history.
	reply, err := s.llmProvider.Chat(ctx, session.history)
	if err != nil {
		return nil, &apperror.UpstreamError{Capability: "llm", Err: err}
	}

	replyMsg := &entity.ChatMessage{
		ChatRoomId: session.Room.Id,
		UserId:     session.Assistant.Id,
		Role:       entity.MessageRoleAssistant,
		Content:    reply,
	}
	if err := uow.ChatMessageRepository().Create(ctx, replyMsg); err != nil {
		return nil, err
	}
	s.publishActivity(ctx, session.Room.Id, replyMsg.Id)

	session.history = append(session.history, llm.Message{
		Role:    constant.ChatMessageRoleAssistant,
		Content: reply,
	})

	s.broadcast(session.Room.Id, replyMsg)

	return replyMsg, nil
}

// decodeDocument returns the attachment bytes, or nil when there is no file
// or it cannot be decoded. A bad attachment never blocks the text message.
func (s *chatService) decodeDocument(frame *dto.InboundChatFrame) []byte {
	if frame.File == nil {
		return nil
	}
	document, err := base64.StdEncoding.DecodeString(frame.File.Data)
	if err != nil {
		s.logger.Warn("ChatService", "Attachment decode failed, keeping caption", map[string]interface{}{
			"file_name": frame.File.Name,
			"error":     err.Error(),
		})
		return nil
	}
	return document
}

func (s *chatService) attachDocument(msg *entity.ChatMessage, frame *dto.InboundChatFrame, document []byte) {
	if document == nil {
		return
	}

	relPath, err := s.uploads.Save(frame.File.Name, document)
	if err != nil {
		s.logger.Warn("ChatService", "Attachment store failed", map[string]interface{}{
			"file_name": frame.File.Name,
			"error":     err.Error(),
		})
		return
	}

	sum := sha256.Sum256(document)
	msg.FilePath = &relPath
	msg.FileMeta = &entity.AttachmentMeta{
		Name:   frame.File.Name,
		Size:   len(document),
		Sha256: hex.EncodeToString(sum[:]),
	}
}

func (s *chatService) publishActivity(ctx context.Context, roomId, messageId uuid.UUID) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRoomActivity(ctx, dto.RoomActivityMessage{
		RoomId:    roomId,
		MessageId: messageId,
	}); err != nil {
		s.logger.Warn("ChatService", "Activity publish failed", map[string]interface{}{
			"room_id": roomId,
			"error":   err.Error(),
		})
	}
}

func (s *chatService) broadcast(roomId uuid.UUID, msg *entity.ChatMessage) {
	frame := dto.OutboundChatFrame{
		Uuid:      msg.Id,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
		File:      fileURL(msg.FilePath),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error("ChatService", "Broadcast marshal failed", map[string]interface{}{
			"message_id": msg.Id,
			"error":      err.Error(),
		})
		return
	}
	s.broadcaster.BroadcastToRoom(roomId, data)
}
