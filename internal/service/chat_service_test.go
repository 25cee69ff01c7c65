package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/apperror"
	"ai-docchat-be/pkg/extract"
	"ai-docchat-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type stubOCR struct {
	text string
	err  error
}

func (s stubOCR) PDF(ctx context.Context, data []byte) (string, error) { return s.text, s.err }

type stubTextReader struct {
	text string
	err  error
}

func (s stubTextReader) Text(ctx context.Context, data []byte) (string, error) {
	return s.text, s.err
}

type stubLLM struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls = append(s.calls, append([]llm.Message(nil), history...))
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.reply, s.err
}

type recordingBroadcaster struct {
	rooms    []uuid.UUID
	payloads [][]byte
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID uuid.UUID, data []byte) {
	b.rooms = append(b.rooms, roomID)
	b.payloads = append(b.payloads, data)
}

type recordingPublisher struct {
	published []dto.RoomActivityMessage
}

func (p *recordingPublisher) PublishRoomActivity(ctx context.Context, payload dto.RoomActivityMessage) error {
	p.published = append(p.published, payload)
	return nil
}

type chatFixture struct {
	factory     *fakeFactory
	svc         IChatService
	llm         *stubLLM
	broadcaster *recordingBroadcaster
	publisher   *recordingPublisher
	userId      uuid.UUID
}

func newChatFixture(t *testing.T, ocrText string) *chatFixture {
	t.Helper()

	factory := newFakeFactory()
	userId := uuid.New()
	factory.store.users = append(factory.store.users,
		&entity.User{Id: userId, Username: "alice", Email: "alice@example.com"},
		&entity.User{Id: uuid.New(), Username: constant.AssistantUsername, Email: constant.AssistantEmail},
	)

	llmStub := &stubLLM{reply: "generated reply"}
	broadcaster := &recordingBroadcaster{}
	publisher := &recordingPublisher{}

	pipeline := extract.NewPipeline(stubOCR{text: ocrText}, stubTextReader{}, nopLogger{})

	svc := NewChatService(
		factory,
		NewRoomService(factory),
		NewHistoryService(factory),
		pipeline,
		llmStub,
		publisher,
		broadcaster,
		NewUploadStore(t.TempDir()),
		nopLogger{},
	)

	return &chatFixture{
		factory:     factory,
		svc:         svc,
		llm:         llmStub,
		broadcaster: broadcaster,
		publisher:   publisher,
		userId:      userId,
	}
}

func inboundFrame(t *testing.T, message string, file *dto.InboundFile) []byte {
	t.Helper()
	raw, err := json.Marshal(dto.InboundChatFrame{Message: message, File: file})
	require.NoError(t, err)
	return raw
}

func TestAdmit_NewRoom(t *testing.T) {
	f := newChatFixture(t, "")

	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, session.Room.RoomUuid)
	assert.Equal(t, f.userId, session.User.Id)
	assert.Equal(t, constant.AssistantUsername, session.Assistant.Username)
	assert.Empty(t, session.history)
}

func TestAdmit_UnknownUser(t *testing.T) {
	f := newChatFixture(t, "")

	_, err := f.svc.Admit(context.Background(), "new", uuid.New())

	var authErr *apperror.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestAdmit_InvalidRoomIdentifier(t *testing.T) {
	f := newChatFixture(t, "")

	_, err := f.svc.Admit(context.Background(), "definitely-not-a-uuid", f.userId)

	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAdmit_AssistantLookupRecoversAfterFailure(t *testing.T) {
	f := newChatFixture(t, "")

	// Strip the assistant account, as if admission raced the seeder.
	var users []*entity.User
	for _, u := range f.factory.store.users {
		if u.Username != constant.AssistantUsername {
			users = append(users, u)
		}
	}
	f.factory.store.users = users

	_, err := f.svc.Admit(context.Background(), "new", f.userId)
	var notFoundErr *apperror.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)

	// Once the account exists, the next admission must see it.
	f.factory.store.users = append(f.factory.store.users,
		&entity.User{Id: uuid.New(), Username: constant.AssistantUsername, Email: constant.AssistantEmail},
	)

	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)
	assert.Equal(t, constant.AssistantUsername, session.Assistant.Username)
}

func TestAdmit_SeedsHistoryFromRoom(t *testing.T) {
	f := newChatFixture(t, "")

	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)

	_, err = f.svc.HandleInbound(context.Background(), session, inboundFrame(t, "hello", nil))
	require.NoError(t, err)

	// A new session over the same room starts from the persisted turns.
	again, err := f.svc.Admit(context.Background(), session.Room.RoomUuid.String(), f.userId)
	require.NoError(t, err)
	require.Len(t, again.history, 2)
	assert.Equal(t, "hello", again.history[0].Content)
	assert.Equal(t, "generated reply", again.history[1].Content)
}

func TestHandleInbound_PersistsBothTurnsAndBroadcastsReplyOnce(t *testing.T) {
	f := newChatFixture(t, "")
	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)

	reply, err := f.svc.HandleInbound(context.Background(), session, inboundFrame(t, "hello", nil))
	require.NoError(t, err)

	require.Len(t, f.factory.store.messages, 2)
	userMsg, assistantMsg := f.factory.store.messages[0], f.factory.store.messages[1]

	assert.Equal(t, entity.MessageRoleUser, userMsg.Role)
	assert.Equal(t, "hello", userMsg.Content)
	assert.Equal(t, f.userId, userMsg.UserId)

	assert.Equal(t, entity.MessageRoleAssistant, assistantMsg.Role)
	assert.Equal(t, "generated reply", assistantMsg.Content)
	assert.Equal(t, session.Assistant.Id, assistantMsg.UserId)

	// Exactly one broadcast, carrying only the reply.
	require.Len(t, f.broadcaster.payloads, 1)
	assert.Equal(t, session.Room.Id, f.broadcaster.rooms[0])

	var frame dto.OutboundChatFrame
	require.NoError(t, json.Unmarshal(f.broadcaster.payloads[0], &frame))
	assert.Equal(t, reply.Id, frame.Uuid)
	assert.Equal(t, "generated reply", frame.Content)

	// Both inserts raised an activity event.
	assert.Len(t, f.publisher.published, 2)
}

func TestHandleInbound_MalformedFrame(t *testing.T) {
	f := newChatFixture(t, "")
	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)

	var validationErr *apperror.ValidationError

	_, err = f.svc.HandleInbound(context.Background(), session, []byte("{not json"))
	assert.ErrorAs(t, err, &validationErr)

	_, err = f.svc.HandleInbound(context.Background(), session, inboundFrame(t, "", nil))
	assert.ErrorAs(t, err, &validationErr)

	assert.Empty(t, f.factory.store.messages)
	assert.Empty(t, f.broadcaster.payloads)
}

func TestHandleInbound_LLMFailureKeepsUserMessage(t *testing.T) {
	f := newChatFixture(t, "")
	f.llm.err = errors.New("model overloaded")
	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)

	_, err = f.svc.HandleInbound(context.Background(), session, inboundFrame(t, "hello", nil))

	var upstreamErr *apperror.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "llm", upstreamErr.Capability)

	// The user's turn was durable before the provider was called.
	require.Len(t, f.factory.store.messages, 1)
	assert.Equal(t, entity.MessageRoleUser, f.factory.store.messages[0].Role)
	assert.Empty(t, f.broadcaster.payloads)
}

func TestHandleInbound_DocumentTextReplacesCaption(t *testing.T) {
	f := newChatFixture(t, "extracted document text")
	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)

	file := &dto.InboundFile{
		Name: "report.pdf",
		Data: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake")),
	}
	_, err = f.svc.HandleInbound(context.Background(), session, inboundFrame(t, "see attached", file))
	require.NoError(t, err)

	userMsg := f.factory.store.messages[0]
	assert.Equal(t, "extracted document text", userMsg.Content)
	require.NotNil(t, userMsg.FilePath)
	require.NotNil(t, userMsg.FileMeta)
	assert.Equal(t, "report.pdf", userMsg.FileMeta.Name)

	// The LLM saw the extracted text, not the caption.
	require.Len(t, f.llm.calls, 1)
	lastTurn := f.llm.calls[0][len(f.llm.calls[0])-1]
	assert.Equal(t, "extracted document text", lastTurn.Content)
}

func TestHandleInbound_BadAttachmentFallsBackToCaption(t *testing.T) {
	f := newChatFixture(t, "should never be used")
	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)

	file := &dto.InboundFile{Name: "broken.pdf", Data: "!!! not base64 !!!"}
	_, err = f.svc.HandleInbound(context.Background(), session, inboundFrame(t, "caption text", file))
	require.NoError(t, err)

	userMsg := f.factory.store.messages[0]
	assert.Equal(t, "caption text", userMsg.Content)
	assert.Nil(t, userMsg.FilePath)
	assert.Nil(t, userMsg.FileMeta)
}

func TestHandleInbound_SequentialTurnsAccumulateHistory(t *testing.T) {
	f := newChatFixture(t, "")
	session, err := f.svc.Admit(context.Background(), "new", f.userId)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.svc.HandleInbound(context.Background(), session,
			inboundFrame(t, fmt.Sprintf("turn %d", i), nil))
		require.NoError(t, err)
	}

	// Each call saw all prior turns plus the new one.
	require.Len(t, f.llm.calls, 3)
	assert.Len(t, f.llm.calls[0], 1)
	assert.Len(t, f.llm.calls[1], 3)
	assert.Len(t, f.llm.calls[2], 5)
}
