package out

import (
	"context"

	"dokureader/internal/modules/export/domain"
	exportout "dokureader/internal/modules/export/port/out"
	librarydto "dokureader/internal/modules/library/dto"
	libraryin "dokureader/internal/modules/library/port/in"
)

// LibraryTopicSource plans exports from the library. It only reads.
type LibraryTopicSource struct {
	library libraryin.Usecase
}

func NewLibraryTopicSource(library libraryin.Usecase) exportout.TopicSource {
	return &LibraryTopicSource{library: library}
}

func (s *LibraryTopicSource) Plan(ctx context.Context, topic, filter string) (domain.Plan, error) {
	detail, err := s.library.GetTopic(ctx, topic)
	if err != nil {
		return domain.Plan{}, err
	}
	docs, err := s.library.ListDocuments(ctx, librarydto.ListDocumentsInput{Topic: detail.ID, Filter: filter})
	if err != nil {
		return domain.Plan{}, err
	}
	plan := domain.Plan{TopicID: detail.ID, TopicName: detail.Name, Filter: domain.NormalizeFilter(filter), Items: make([]domain.Item, 0, len(docs))}
	for _, doc := range docs {
		plan.Items = append(plan.Items, domain.Item{Path: doc.Path, DisplayName: doc.DisplayName})
	}
	return plan, nil
}
