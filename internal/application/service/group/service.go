package group_service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	group_port "yatube/internal/domain/ports/input/group"
	ports "yatube/internal/domain/ports/output"
	group_repository "yatube/internal/domain/ports/output/group"
)

type newGroup struct {
	Title string `validate:"required,max=200"`
	Slug  string `validate:"required,max=50,slug"`
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var _ group_port.Service = (*GroupService)(nil)

type GroupService struct {
	groupRepo group_repository.Repository
	validate  *validator.Validate
	log       ports.Logger
}

func NewGroupService(groupRepo group_repository.Repository, log ports.Logger) *GroupService {
	validate := validator.New()
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return &GroupService{groupRepo: groupRepo, validate: validate, log: log}
}

func (s *GroupService) CreateGroup(ctx context.Context, group *model.Group) (*model.Group, error) {
	group.Title = strings.TrimSpace(group.Title)
	group.Slug = strings.TrimSpace(group.Slug)
	if err := s.validate.Struct(newGroup{Title: group.Title, Slug: group.Slug}); err != nil {
		s.log.Debug("Invalid group", slog.String("slug", group.Slug), slog.String("error", err.Error()))
		return nil, custom_errors.ErrInvalidInput
	}
	return s.groupRepo.Create(ctx, group)
}

// DeleteGroup removes the group; its posts stay and lose their group.
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.groupRepo.Delete(ctx, group.ID)
}

func (s *GroupService) GetGroup(ctx context.Context, slug string) (*model.Group, error) {
	return s.groupRepo.GetBySlug(ctx, slug)
}

func (s *GroupService) ListGroups(ctx context.Context) ([]*model.Group, error) {
	return s.groupRepo.List(ctx)
}
