package service

import (
	"context"
	"sort"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repositories that interpret the specifications the services
// actually issue. Shared across the service tests in this package.

type fakeStore struct {
	users    []*entity.User
	rooms    []*entity.ChatRoom
	messages []*entity.ChatMessage

	roomCreateErr error
	msgCreateErr  error
	touched       []uuid.UUID
}

type fakeFactory struct {
	store *fakeStore
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{store: &fakeStore{}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUow) ChatRoomRepository() contract.ChatRoomRepository {
	return &fakeRoomRepo{store: u.store}
}

func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}

// Users

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	r.store.users = append(r.store.users, user)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.store.users {
		if userMatches(u, specs) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.store.users {
		if userMatches(u, specs) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func userMatches(u *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		case specification.ByUsername:
			if u.Username != s.Username {
				return false
			}
		case specification.ByEmail:
			if u.Email != s.Email {
				return false
			}
		}
	}
	return true
}

// Rooms

type fakeRoomRepo struct {
	store *fakeStore
}

func (r *fakeRoomRepo) Create(ctx context.Context, room *entity.ChatRoom) error {
	if r.store.roomCreateErr != nil {
		return r.store.roomCreateErr
	}
	if room.Id == uuid.Nil {
		room.Id = uuid.New()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	r.store.rooms = append(r.store.rooms, room)
	return nil
}

func (r *fakeRoomRepo) Update(ctx context.Context, room *entity.ChatRoom) error { return nil }
func (r *fakeRoomRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }

func (r *fakeRoomRepo) Touch(ctx context.Context, id uuid.UUID) error {
	r.store.touched = append(r.store.touched, id)
	return nil
}

func (r *fakeRoomRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error) {
	for _, room := range r.store.rooms {
		if r.roomMatches(room, specs) {
			return room, nil
		}
	}
	return nil, nil
}

func (r *fakeRoomRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error) {
	var out []*entity.ChatRoom
	for _, room := range r.store.rooms {
		if r.roomMatches(room, specs) {
			out = append(out, room)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeRoomRepo) roomMatches(room *entity.ChatRoom, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if room.Id != s.ID {
				return false
			}
		case specification.ByRoomUuidAndOwner:
			if room.RoomUuid != s.RoomUuid || room.UserId != s.UserID {
				return false
			}
		case specification.ByOwner:
			if room.UserId != s.UserID {
				return false
			}
		case specification.WithMessages:
			found := false
			for _, m := range r.store.messages {
				if m.ChatRoomId == room.Id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// Messages

type fakeMessageRepo struct {
	store *fakeStore
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *entity.ChatMessage) error {
	if r.store.msgCreateErr != nil {
		return r.store.msgCreateErr
	}
	if msg.Id == uuid.Nil {
		msg.Id = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.store.messages = append(r.store.messages, msg)
	return nil
}

func (r *fakeMessageRepo) Update(ctx context.Context, msg *entity.ChatMessage) error { return nil }
func (r *fakeMessageRepo) Delete(ctx context.Context, id uuid.UUID) error            { return nil }

func (r *fakeMessageRepo) DeleteByChatRoomId(ctx context.Context, roomId uuid.UUID) error {
	var kept []*entity.ChatMessage
	for _, m := range r.store.messages {
		if m.ChatRoomId != roomId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var out []*entity.ChatMessage
	var order *specification.OrderBy
	limit := -1

	for _, m := range r.store.messages {
		match := true
		for _, spec := range specs {
			if s, ok := spec.(specification.ByChatRoomID); ok && m.ChatRoomId != s.ChatRoomID {
				match = false
				break
			}
		}
		if match {
			out = append(out, m)
		}
	}

	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			o := s
			order = &o
		case specification.Limit:
			limit = s.N
		}
	}

	if order != nil && order.Field == "created_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if order.Desc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}
