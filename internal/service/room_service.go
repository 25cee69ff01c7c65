package service

import (
	"context"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/apperror"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IRoomService interface {
	// ResolveOrCreate maps a raw room identifier to a room owned by the
	// requesting user, creating it on first use. The literal "new" allocates
	// a fresh identifier.
	ResolveOrCreate(ctx context.Context, identifier string, userId uuid.UUID) (*entity.ChatRoom, error)
	Validate(ctx context.Context, roomUuid uuid.UUID, userId uuid.UUID) (*entity.ChatRoom, error)

	GetAll(ctx context.Context, userId uuid.UUID) ([]dto.RoomResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetMessages(ctx context.Context, userId uuid.UUID, roomUuid uuid.UUID) ([]dto.MessageResponse, error)
	CreateMessage(ctx context.Context, userId uuid.UUID, roomUuid uuid.UUID, req *dto.CreateMessageRequest) (*dto.MessageResponse, error)
}

type roomService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewRoomService(uowFactory unitofwork.RepositoryFactory) IRoomService {
	return &roomService{uowFactory: uowFactory}
}

func (s *roomService) ResolveOrCreate(ctx context.Context, identifier string, userId uuid.UUID) (*entity.ChatRoom, error) {
	if identifier == constant.RoomParamNew {
		identifier = uuid.NewString()
	}

	roomUuid, err := uuid.Parse(identifier)
	if err != nil {
		return nil, &apperror.ValidationError{Reason: "invalid room identifier"}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Rooms are keyed by (identifier, owner): another user asking for the
	// same identifier gets a room of their own.
	room, err := uow.ChatRoomRepository().FindOne(ctx,
		specification.ByRoomUuidAndOwner{RoomUuid: roomUuid, UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	room = &entity.ChatRoom{
		RoomUuid: roomUuid,
		UserId:   userId,
		Name:     roomUuid.String(),
	}
	if err := uow.ChatRoomRepository().Create(ctx, room); err != nil {
		return nil, err
	}

	return room, nil
}

func (s *roomService) Validate(ctx context.Context, roomUuid uuid.UUID, userId uuid.UUID) (*entity.ChatRoom, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindOne(ctx,
		specification.ByRoomUuidAndOwner{RoomUuid: roomUuid, UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, &apperror.NotFoundError{Entity: "room"}
	}

	return room, nil
}

// GetAll lists the user's rooms that hold at least one message, most recently
// active first.
func (s *roomService) GetAll(ctx context.Context, userId uuid.UUID) ([]dto.RoomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.ChatRoomRepository().FindAll(ctx,
		specification.ByOwner{UserID: userId},
		specification.WithMessages{},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.RoomResponse, len(rooms))
	for i, room := range rooms {
		res[i] = dto.RoomResponse{
			Uuid:        room.RoomUuid,
			Name:        room.Name,
			Description: room.Description,
			Timestamp:   room.CreatedAt,
		}
	}
	return res, nil
}

func (s *roomService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room := &entity.ChatRoom{
		RoomUuid:    uuid.New(),
		UserId:      userId,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := uow.ChatRoomRepository().Create(ctx, room); err != nil {
		return nil, err
	}

	return &dto.RoomResponse{
		Uuid:        room.RoomUuid,
		Name:        room.Name,
		Description: room.Description,
		Timestamp:   room.CreatedAt,
	}, nil
}

func (s *roomService) GetMessages(ctx context.Context, userId uuid.UUID, roomUuid uuid.UUID) ([]dto.MessageResponse, error) {
	room, err := s.Validate(ctx, roomUuid, userId)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatRoomID{ChatRoomID: room.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.MessageResponse, len(messages))
	for i, msg := range messages {
		res[i] = dto.MessageResponse{
			Uuid:      msg.Id,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
			File:      fileURL(msg.FilePath),
		}
	}
	return res, nil
}

// CreateMessage appends a user turn over REST, without involving the
// assistant. The next socket session over the room picks it up as history.
func (s *roomService) CreateMessage(ctx context.Context, userId uuid.UUID, roomUuid uuid.UUID, req *dto.CreateMessageRequest) (*dto.MessageResponse, error) {
	room, err := s.Validate(ctx, roomUuid, userId)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	msg := &entity.ChatMessage{
		ChatRoomId: room.Id,
		UserId:     userId,
		Role:       entity.MessageRoleUser,
		Content:    req.Content,
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := uow.ChatRoomRepository().Touch(ctx, room.Id); err != nil {
		return nil, err
	}

	return &dto.MessageResponse{
		Uuid:      msg.Id,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
	}, nil
}

func fileURL(path *string) *string {
	if path == nil {
		return nil
	}
	url := "/uploads/" + *path
	return &url
}
