package constant

const (
	// Message roles stored on the record itself. Role is decided at
	// persistence time, never inferred again at query time.
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Well-known account that authors every generated reply.
	AssistantUsername = "llm"
	AssistantEmail    = "llm@docchat.local"

	// RoomParamNew is the client shorthand for "allocate a fresh room id".
	RoomParamNew = "new"

	// ContextWindowLimit bounds how many prior turns seed a session.
	ContextWindowLimit = 100

	// Topic for room activity events (message persisted in a room).
	RoomActivityTopicName = "CHAT_ROOM_ACTIVITY"

	// Uploaded attachments are stored under this prefix.
	MessageUploadPrefix = "message_uploads"
)
