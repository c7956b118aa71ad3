package repository

import "github.com/noah-isme/syntheses-api/internal/models"

// ChatRepository persists chat.json.
type ChatRepository struct {
	*Document[models.ChatEntry]
}

// NewChatRepository constructs the repository.
func NewChatRepository(path string, observer MutationObserver) *ChatRepository {
	return &ChatRepository{Document: NewDocument[models.ChatEntry]("chat", path, observer)}
}

// LogRepository persists logs.json.
type LogRepository struct {
	*Document[models.LogEntry]
}

// NewLogRepository constructs the repository.
func NewLogRepository(path string, observer MutationObserver) *LogRepository {
	return &LogRepository{Document: NewDocument[models.LogEntry]("logs", path, observer)}
}
