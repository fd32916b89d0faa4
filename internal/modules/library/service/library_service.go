package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dokureader/internal/modules/library/domain"
	libraryout "dokureader/internal/modules/library/port/out"
	"dokureader/internal/platform/clock"
	apperrors "dokureader/internal/platform/errors"
	"dokureader/internal/platform/id"
	"dokureader/internal/platform/tx"
)

const searchLimit = 50

type LibraryService struct {
	clock   clock.Clock
	idGen   id.Generator
	tx      tx.Manager
	store   libraryout.StateStore
	index   libraryout.DocumentIndex
	formats libraryout.FormatChecker
	legacy  libraryout.LegacyStateReader
	logger  *slog.Logger
}

func NewLibraryService(
	clock clock.Clock,
	idGen id.Generator,
	txm tx.Manager,
	store libraryout.StateStore,
	index libraryout.DocumentIndex,
	formats libraryout.FormatChecker,
	legacy libraryout.LegacyStateReader,
	logger *slog.Logger,
) *LibraryService {
	return &LibraryService{clock: clock, idGen: idGen, tx: txm, store: store, index: index, formats: formats, legacy: legacy, logger: logger}
}

func (s *LibraryService) CreateTopic(ctx context.Context, name string) (domain.Topic, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateTopicName(name); err != nil {
		return domain.Topic{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	var created domain.Topic
	_, err := s.mutate(ctx, func(state *domain.State) error {
		if topicNameTaken(*state, name, "") {
			return fmt.Errorf("%w: topic %q", apperrors.ErrConflict, name)
		}
		created = s.newTopic(name)
		state.Topics = append(state.Topics, created)
		return nil
	})
	if err != nil {
		return domain.Topic{}, err
	}
	return created, nil
}

func (s *LibraryService) RenameTopic(ctx context.Context, ref, newName string) (domain.Topic, error) {
	newName = strings.TrimSpace(newName)
	if err := domain.ValidateTopicName(newName); err != nil {
		return domain.Topic{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	var renamed domain.Topic
	_, err := s.mutate(ctx, func(state *domain.State) error {
		i, err := resolveTopic(*state, ref)
		if err != nil {
			return err
		}
		if topicNameTaken(*state, newName, state.Topics[i].ID) {
			return fmt.Errorf("%w: topic %q", apperrors.ErrConflict, newName)
		}
		state.Topics[i].Name = newName
		renamed = state.Topics[i]
		return nil
	})
	if err != nil {
		return domain.Topic{}, err
	}
	return renamed, nil
}

func (s *LibraryService) DeleteTopic(ctx context.Context, ref string) error {
	_, err := s.mutate(ctx, func(state *domain.State) error {
		i, err := resolveTopic(*state, ref)
		if err != nil {
			return err
		}
		if state.CurrentTopicID == state.Topics[i].ID {
			state.CurrentTopicID = ""
		}
		state.Topics = append(state.Topics[:i], state.Topics[i+1:]...)
		return nil
	})
	return err
}

// ListTopics returns topics sorted case-insensitively by name.
func (s *LibraryService) ListTopics(ctx context.Context) ([]domain.Topic, string, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	topics := append([]domain.Topic(nil), state.Topics...)
	sort.SliceStable(topics, func(i, j int) bool {
		return strings.ToLower(topics[i].Name) < strings.ToLower(topics[j].Name)
	})
	return topics, state.CurrentTopicID, nil
}

func (s *LibraryService) SelectTopic(ctx context.Context, ref string) (domain.Topic, error) {
	var selected domain.Topic
	_, err := s.mutate(ctx, func(state *domain.State) error {
		i := state.FindTopic(ref)
		if i < 0 {
			return fmt.Errorf("%w: topic %q", apperrors.ErrNotFound, ref)
		}
		state.CurrentTopicID = state.Topics[i].ID
		selected = state.Topics[i]
		return nil
	})
	if err != nil {
		return domain.Topic{}, err
	}
	return selected, nil
}

func (s *LibraryService) CurrentTopic(ctx context.Context) (domain.Topic, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return domain.Topic{}, err
	}
	i := state.FindTopic(state.CurrentTopicID)
	if i < 0 {
		return domain.Topic{}, fmt.Errorf("%w: no current topic", apperrors.ErrNotFound)
	}
	return state.Topics[i], nil
}

// GetTopic resolves ref, or the current topic when ref is empty.
func (s *LibraryService) GetTopic(ctx context.Context, ref string) (domain.Topic, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return domain.Topic{}, err
	}
	i, err := resolveTopic(state, ref)
	if err != nil {
		return domain.Topic{}, err
	}
	return state.Topics[i], nil
}

// AddDocuments appends existing, supported, not yet known files to a topic.
// It returns the topic id, the number added and the paths that were ignored.
func (s *LibraryService) AddDocuments(ctx context.Context, ref string, paths []string, create bool) (string, int, []string, error) {
	var (
		topicID string
		added   int
		ignored []string
	)
	if create && strings.TrimSpace(ref) == "" {
		return "", 0, nil, fmt.Errorf("%w: topic name is required", apperrors.ErrInvalidInput)
	}
	_, err := s.mutate(ctx, func(state *domain.State) error {
		i := -1
		if create {
			i = s.ensureTopic(state, ref)
		} else {
			var err error
			if i, err = resolveTopic(*state, ref); err != nil {
				return err
			}
		}
		topic := &state.Topics[i]
		topicID = topic.ID
		known := make(map[string]struct{}, len(topic.Documents))
		for _, doc := range topic.Documents {
			known[doc.Path] = struct{}{}
		}
		now := s.clock.Now()
		for _, raw := range paths {
			path, ok := s.acceptable(raw)
			if !ok {
				ignored = append(ignored, raw)
				continue
			}
			if _, dup := known[path]; dup {
				ignored = append(ignored, raw)
				continue
			}
			known[path] = struct{}{}
			topic.Documents = append(topic.Documents, domain.NewDocument(topic.ID, path, now))
			added++
		}
		return nil
	})
	if err != nil {
		return "", 0, nil, err
	}
	return topicID, added, ignored, nil
}

func (s *LibraryService) RemoveDocument(ctx context.Context, ref, path string) error {
	_, err := s.mutate(ctx, func(state *domain.State) error {
		i, err := resolveTopic(*state, ref)
		if err != nil {
			return err
		}
		j := documentIndex(state.Topics[i], path)
		if j < 0 {
			return fmt.Errorf("%w: document %q", apperrors.ErrNotFound, path)
		}
		docs := state.Topics[i].Documents
		state.Topics[i].Documents = append(docs[:j], docs[j+1:]...)
		return nil
	})
	return err
}

func (s *LibraryService) SetRead(ctx context.Context, ref, path string, read bool) (domain.Document, error) {
	var updated domain.Document
	_, err := s.mutate(ctx, func(state *domain.State) error {
		i, err := resolveTopic(*state, ref)
		if err != nil {
			return err
		}
		j := documentIndex(state.Topics[i], path)
		if j < 0 {
			return fmt.Errorf("%w: document %q", apperrors.ErrNotFound, path)
		}
		state.Topics[i].Documents[j].Read = read
		updated = state.Topics[i].Documents[j]
		return nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return updated, nil
}

func (s *LibraryService) ListDocuments(ctx context.Context, ref string, filter domain.Filter) ([]domain.Document, error) {
	topic, err := s.GetTopic(ctx, ref)
	if err != nil {
		return nil, err
	}
	return topic.Select(filter), nil
}

func (s *LibraryService) FindDocuments(ctx context.Context, query string) ([]domain.DocumentHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", apperrors.ErrInvalidInput)
	}
	return s.index.Search(ctx, query, searchLimit)
}

// ImportLegacy merges a state file of the original desktop application.
// Topics are matched by name; read flags from the file win.
func (s *LibraryService) ImportLegacy(ctx context.Context, path string) (int, int, error) {
	legacy, err := s.legacy.Read(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	names := make([]string, 0, len(legacy.Topics))
	for name := range legacy.Topics {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) })

	imported := 0
	_, err = s.mutate(ctx, func(state *domain.State) error {
		now := s.clock.Now()
		for _, name := range names {
			i := s.ensureTopic(state, name)
			topic := &state.Topics[i]
			for _, doc := range legacy.Topics[name] {
				if strings.TrimSpace(doc.Path) == "" {
					continue
				}
				if j := topic.IndexOf(doc.Path); j >= 0 {
					topic.Documents[j].Read = doc.Read
					continue
				}
				entry := domain.NewDocument(topic.ID, doc.Path, now)
				entry.Read = doc.Read
				topic.Documents = append(topic.Documents, entry)
				imported++
			}
		}
		if legacy.CurrentTopic != nil {
			if i := state.FindTopic(*legacy.CurrentTopic); i >= 0 {
				state.CurrentTopicID = state.Topics[i].ID
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return len(names), imported, nil
}

func (s *LibraryService) Reindex(ctx context.Context) error {
	state, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	return s.reindex(ctx, state)
}

func (s *LibraryService) mutate(ctx context.Context, fn func(*domain.State) error) (domain.State, error) {
	var out domain.State
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		state, err := s.store.Load(ctx)
		if err != nil {
			return err
		}
		if err := fn(&state); err != nil {
			return err
		}
		state.SchemaVersion = domain.SchemaVersion
		if err := s.store.Save(ctx, state); err != nil {
			return err
		}
		out = state
		// The state is saved; a stale index is repaired by Reindex.
		if err := s.reindex(ctx, state); err != nil {
			s.logger.Warn("refresh document index", "err", err)
		}
		return nil
	})
	return out, err
}

func (s *LibraryService) reindex(ctx context.Context, state domain.State) error {
	if s.index == nil {
		return nil
	}
	return s.index.Rebuild(ctx, state.Topics)
}

func (s *LibraryService) newTopic(name string) domain.Topic {
	return domain.Topic{ID: s.idGen.New(), Name: name, Documents: []domain.Document{}, CreatedAt: s.clock.Now()}
}

func (s *LibraryService) ensureTopic(state *domain.State, name string) int {
	name = strings.TrimSpace(name)
	for i, topic := range state.Topics {
		if strings.EqualFold(topic.Name, name) {
			return i
		}
	}
	state.Topics = append(state.Topics, s.newTopic(name))
	return len(state.Topics) - 1
}

func (s *LibraryService) acceptable(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	path, err := filepath.Abs(raw)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if s.formats != nil && !s.formats.Supported(path) {
		return "", false
	}
	return path, true
}

func resolveTopic(state domain.State, ref string) (int, error) {
	if strings.TrimSpace(ref) == "" {
		if state.CurrentTopicID == "" {
			return -1, fmt.Errorf("%w: no topic given and no current topic selected", apperrors.ErrInvalidInput)
		}
		ref = state.CurrentTopicID
	}
	i := state.FindTopic(ref)
	if i < 0 {
		return -1, fmt.Errorf("%w: topic %q", apperrors.ErrNotFound, ref)
	}
	return i, nil
}

func topicNameTaken(state domain.State, name, exceptID string) bool {
	for _, topic := range state.Topics {
		if topic.ID != exceptID && strings.EqualFold(topic.Name, name) {
			return true
		}
	}
	return false
}

// documentIndex matches the stored path first, then the absolute form of path.
func documentIndex(topic domain.Topic, path string) int {
	if i := topic.IndexOf(path); i >= 0 {
		return i
	}
	if abs, err := filepath.Abs(path); err == nil {
		return topic.IndexOf(abs)
	}
	return -1
}
