package usecase

import (
	"context"

	"dokureader/internal/modules/library/domain"
	"dokureader/internal/modules/library/dto"
	libraryin "dokureader/internal/modules/library/port/in"
	"dokureader/internal/modules/library/service"
)

type Interactor struct {
	svc *service.LibraryService
}

func NewInteractor(svc *service.LibraryService) libraryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) CreateTopic(ctx context.Context, name string) (dto.TopicOutput, error) {
	topic, err := i.svc.CreateTopic(ctx, name)
	if err != nil {
		return dto.TopicOutput{}, err
	}
	return toTopicOutput(topic, ""), nil
}

func (i *Interactor) RenameTopic(ctx context.Context, ref, newName string) (dto.TopicOutput, error) {
	topic, err := i.svc.RenameTopic(ctx, ref, newName)
	if err != nil {
		return dto.TopicOutput{}, err
	}
	return toTopicOutput(topic, ""), nil
}

func (i *Interactor) DeleteTopic(ctx context.Context, ref string) error {
	return i.svc.DeleteTopic(ctx, ref)
}

func (i *Interactor) ListTopics(ctx context.Context) ([]dto.TopicOutput, error) {
	topics, current, err := i.svc.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopicOutput, 0, len(topics))
	for _, topic := range topics {
		out = append(out, toTopicOutput(topic, current))
	}
	return out, nil
}

func (i *Interactor) SelectTopic(ctx context.Context, ref string) (dto.TopicOutput, error) {
	topic, err := i.svc.SelectTopic(ctx, ref)
	if err != nil {
		return dto.TopicOutput{}, err
	}
	return toTopicOutput(topic, topic.ID), nil
}

func (i *Interactor) CurrentTopic(ctx context.Context) (dto.TopicOutput, error) {
	topic, err := i.svc.CurrentTopic(ctx)
	if err != nil {
		return dto.TopicOutput{}, err
	}
	return toTopicOutput(topic, topic.ID), nil
}

func (i *Interactor) GetTopic(ctx context.Context, ref string) (dto.TopicDetailOutput, error) {
	topic, err := i.svc.GetTopic(ctx, ref)
	if err != nil {
		return dto.TopicDetailOutput{}, err
	}
	return dto.TopicDetailOutput{ID: topic.ID, Name: topic.Name, Documents: toDocumentOutputs(topic.Documents)}, nil
}

func (i *Interactor) AddDocuments(ctx context.Context, input dto.AddDocumentsInput) (dto.AddDocumentsOutput, error) {
	topicID, added, ignored, err := i.svc.AddDocuments(ctx, input.Topic, input.Paths, input.Create)
	if err != nil {
		return dto.AddDocumentsOutput{}, err
	}
	return dto.AddDocumentsOutput{TopicID: topicID, Added: added, Ignored: ignored}, nil
}

func (i *Interactor) RemoveDocument(ctx context.Context, topic, path string) error {
	return i.svc.RemoveDocument(ctx, topic, path)
}

func (i *Interactor) SetRead(ctx context.Context, input dto.SetReadInput) (dto.DocumentOutput, error) {
	doc, err := i.svc.SetRead(ctx, input.Topic, input.Path, input.Read)
	if err != nil {
		return dto.DocumentOutput{}, err
	}
	return toDocumentOutput(doc), nil
}

func (i *Interactor) ListDocuments(ctx context.Context, input dto.ListDocumentsInput) ([]dto.DocumentOutput, error) {
	filter, err := domain.ParseFilter(input.Filter)
	if err != nil {
		return nil, err
	}
	docs, err := i.svc.ListDocuments(ctx, input.Topic, filter)
	if err != nil {
		return nil, err
	}
	return toDocumentOutputs(docs), nil
}

func (i *Interactor) FindDocuments(ctx context.Context, query string) ([]dto.SearchHitOutput, error) {
	hits, err := i.svc.FindDocuments(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SearchHitOutput, 0, len(hits))
	for _, hit := range hits {
		out = append(out, dto.SearchHitOutput{
			TopicID:     hit.TopicID,
			TopicName:   hit.TopicName,
			Path:        hit.Path,
			DisplayName: hit.DisplayName,
			Read:        hit.Read,
		})
	}
	return out, nil
}

func (i *Interactor) ImportLegacy(ctx context.Context, path string) (dto.ImportLegacyOutput, error) {
	topics, docs, err := i.svc.ImportLegacy(ctx, path)
	if err != nil {
		return dto.ImportLegacyOutput{}, err
	}
	return dto.ImportLegacyOutput{Topics: topics, Documents: docs}, nil
}

func (i *Interactor) Reindex(ctx context.Context) error {
	return i.svc.Reindex(ctx)
}

func toTopicOutput(topic domain.Topic, currentID string) dto.TopicOutput {
	total, read := topic.Counts()
	return dto.TopicOutput{
		ID:        topic.ID,
		Name:      topic.Name,
		Documents: total,
		Read:      read,
		Current:   currentID != "" && topic.ID == currentID,
	}
}

func toDocumentOutput(doc domain.Document) dto.DocumentOutput {
	return dto.DocumentOutput{
		Path:        doc.Path,
		DisplayName: doc.DisplayName,
		TopicID:     doc.TopicID,
		Read:        doc.Read,
		AddedAt:     doc.AddedAt,
	}
}

func toDocumentOutputs(docs []domain.Document) []dto.DocumentOutput {
	out := make([]dto.DocumentOutput, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentOutput(doc))
	}
	return out
}
