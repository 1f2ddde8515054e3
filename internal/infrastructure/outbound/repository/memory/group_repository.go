package memory

import (
	"context"
	"log/slog"
	"sort"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
)

type GroupRepository struct {
	src source
	log ports.Logger
}

func NewGroupRepository(store *Store, log ports.Logger) *GroupRepository {
	return &GroupRepository{src: store, log: log}
}

func (g *GroupRepository) Create(ctx context.Context, group *model.Group) (*model.Group, error) {
	var created *model.Group
	err := g.src.write(func(t *tables) error {
		for _, existing := range t.groups {
			if existing.Slug == group.Slug {
				return custom_errors.ErrSlugTaken
			}
		}
		newGroup := copyGroup(group)
		newGroup.ID = t.nextGroupID
		t.nextGroupID++
		t.groups[newGroup.ID] = newGroup
		created = copyGroup(newGroup)
		return nil
	})
	if err != nil {
		g.log.Debug("Failed to create group", slog.String("slug", group.Slug), slog.String("error", err.Error()))
		return nil, err
	}
	return created, nil
}

func (g *GroupRepository) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	var result *model.Group
	err := g.src.read(func(t *tables) error {
		group, ok := t.groups[id]
		if !ok {
			return custom_errors.ErrGroupNotFound
		}
		result = copyGroup(group)
		return nil
	})
	return result, err
}

func (g *GroupRepository) GetBySlug(ctx context.Context, slug string) (*model.Group, error) {
	var result *model.Group
	err := g.src.read(func(t *tables) error {
		for _, group := range t.groups {
			if group.Slug == slug {
				result = copyGroup(group)
				return nil
			}
		}
		return custom_errors.ErrGroupNotFound
	})
	if err != nil {
		g.log.Debug("Group not found by slug", slog.String("slug", slug))
		return nil, err
	}
	return result, nil
}

func (g *GroupRepository) List(ctx context.Context) ([]*model.Group, error) {
	result := []*model.Group{}
	err := g.src.read(func(t *tables) error {
		for _, group := range t.groups {
			result = append(result, copyGroup(group))
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].Title != result[j].Title {
			return result[i].Title < result[j].Title
		}
		return result[i].ID < result[j].ID
	})
	return result, err
}

func (g *GroupRepository) Delete(ctx context.Context, id int64) error {
	return g.src.write(func(t *tables) error {
		if _, ok := t.groups[id]; !ok {
			return custom_errors.ErrGroupNotFound
		}
		t.deleteGroup(id)
		return nil
	})
}
