package in

import (
	"context"

	"dokureader/internal/modules/library/dto"
)

type Usecase interface {
	CreateTopic(ctx context.Context, name string) (dto.TopicOutput, error)
	RenameTopic(ctx context.Context, ref, newName string) (dto.TopicOutput, error)
	DeleteTopic(ctx context.Context, ref string) error
	ListTopics(ctx context.Context) ([]dto.TopicOutput, error)
	SelectTopic(ctx context.Context, ref string) (dto.TopicOutput, error)
	CurrentTopic(ctx context.Context) (dto.TopicOutput, error)
	GetTopic(ctx context.Context, ref string) (dto.TopicDetailOutput, error)
	AddDocuments(ctx context.Context, input dto.AddDocumentsInput) (dto.AddDocumentsOutput, error)
	RemoveDocument(ctx context.Context, topic, path string) error
	SetRead(ctx context.Context, input dto.SetReadInput) (dto.DocumentOutput, error)
	ListDocuments(ctx context.Context, input dto.ListDocumentsInput) ([]dto.DocumentOutput, error)
	FindDocuments(ctx context.Context, query string) ([]dto.SearchHitOutput, error)
	ImportLegacy(ctx context.Context, path string) (dto.ImportLegacyOutput, error)
	Reindex(ctx context.Context) error
}
