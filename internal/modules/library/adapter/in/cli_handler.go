package in

import (
	"context"

	"dokureader/internal/modules/library/dto"
	libraryin "dokureader/internal/modules/library/port/in"
)

type CLIHandler struct {
	usecase libraryin.Usecase
}

func NewCLIHandler(usecase libraryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) CreateTopic(ctx context.Context, name string) (dto.TopicOutput, error) {
	return h.usecase.CreateTopic(ctx, name)
}

func (h CLIHandler) RenameTopic(ctx context.Context, ref, newName string) (dto.TopicOutput, error) {
	return h.usecase.RenameTopic(ctx, ref, newName)
}

func (h CLIHandler) DeleteTopic(ctx context.Context, ref string) error {
	return h.usecase.DeleteTopic(ctx, ref)
}

func (h CLIHandler) ListTopics(ctx context.Context) ([]dto.TopicOutput, error) {
	return h.usecase.ListTopics(ctx)
}

func (h CLIHandler) UseTopic(ctx context.Context, ref string) (dto.TopicOutput, error) {
	return h.usecase.SelectTopic(ctx, ref)
}

func (h CLIHandler) CurrentTopic(ctx context.Context) (dto.TopicOutput, error) {
	return h.usecase.CurrentTopic(ctx)
}

func (h CLIHandler) AddDocuments(ctx context.Context, topic string, paths []string, create bool) (dto.AddDocumentsOutput, error) {
	return h.usecase.AddDocuments(ctx, dto.AddDocumentsInput{Topic: topic, Paths: paths, Create: create})
}

func (h CLIHandler) RemoveDocument(ctx context.Context, topic, path string) error {
	return h.usecase.RemoveDocument(ctx, topic, path)
}

func (h CLIHandler) MarkRead(ctx context.Context, topic, path string, read bool) (dto.DocumentOutput, error) {
	return h.usecase.SetRead(ctx, dto.SetReadInput{Topic: topic, Path: path, Read: read})
}

func (h CLIHandler) ListDocuments(ctx context.Context, topic, filter string) ([]dto.DocumentOutput, error) {
	return h.usecase.ListDocuments(ctx, dto.ListDocumentsInput{Topic: topic, Filter: filter})
}

func (h CLIHandler) FindDocuments(ctx context.Context, query string) ([]dto.SearchHitOutput, error) {
	return h.usecase.FindDocuments(ctx, query)
}

func (h CLIHandler) ImportLegacy(ctx context.Context, path string) (dto.ImportLegacyOutput, error) {
	return h.usecase.ImportLegacy(ctx, path)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}
