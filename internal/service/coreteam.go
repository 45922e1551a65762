package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/serialize"
)

type SocialLinksInput struct {
	GitHub   string `json:"github" validate:"omitempty,url"`
	Twitter  string `json:"twitter" validate:"omitempty,url"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
}

type CoreTeamInput struct {
	Name         string           `json:"name" validate:"required,min=2,max=100"`
	Role         string           `json:"role" validate:"required,min=2,max=100"`
	About        string           `json:"about" validate:"required,min=10,max=1000"`
	ProfileImage string           `json:"profileImage" validate:"required,url"`
	SocialLinks  SocialLinksInput `json:"socialLinks"`
}

type CoreTeamPatchInput struct {
	Name         *string           `json:"name" validate:"omitempty,min=2,max=100"`
	Role         *string           `json:"role" validate:"omitempty,min=2,max=100"`
	About        *string           `json:"about" validate:"omitempty,min=10,max=1000"`
	ProfileImage *string           `json:"profileImage" validate:"omitempty,url"`
	SocialLinks  *SocialLinksInput `json:"socialLinks"`
}

type coreTeamService struct {
	repo  repository.CoreTeamRepository
	audit auditTrail
	log   zerolog.Logger
}

func NewCoreTeamService(repo repository.CoreTeamRepository, activities repository.ActivityRepository, logger zerolog.Logger) CoreTeamService {
	l := logger.With().Str("module", "service").Str("component", "core_team").Logger()
	return &coreTeamService{repo: repo, audit: auditTrail{repo: activities, log: l}, log: l}
}

// List returns every member as a single unbounded page.
func (s *coreTeamService) List(ctx context.Context) (repository.PageResult[serialize.CoreTeamMember], error) {
	members, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list core team failed")
		return repository.PageResult[serialize.CoreTeamMember]{}, err
	}
	p := repository.NewPage(1, repository.Unbounded())
	return repository.NewPageResult(p, serialize.Slice(members, serialize.FromCoreTeamMember), int64(len(members))), nil
}

func (s *coreTeamService) Get(ctx context.Context, raw string) (serialize.CoreTeamMember, error) {
	id, err := parseID("id", raw)
	if err != nil {
		return serialize.CoreTeamMember{}, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return serialize.CoreTeamMember{}, err
	}
	return serialize.FromCoreTeamMember(m), nil
}

func (s *coreTeamService) Create(ctx context.Context, in CoreTeamInput) (serialize.CoreTeamMember, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.About = strings.TrimSpace(in.About)
	in.ProfileImage = strings.TrimSpace(in.ProfileImage)
	in.SocialLinks = in.SocialLinks.trimmed()
	if err := validateInput(in); err != nil {
		return serialize.CoreTeamMember{}, err
	}

	now := model.Now()
	m := model.CoreTeamMember{
		ID:           objectid.NewWithTime(now),
		Name:         in.Name,
		Role:         in.Role,
		About:        in.About,
		ProfileImage: in.ProfileImage,
		SocialLinks:  model.SocialLinks(in.SocialLinks),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.log.Error().Err(err).Str("name", m.Name).Msg("create core team member failed")
		return serialize.CoreTeamMember{}, err
	}
	s.audit.note(ctx, newActivity(model.ActionCoreTeamMemberCreated, "Added core team member: "+m.Name, nil, idRef(m.ID)))
	return serialize.FromCoreTeamMember(m), nil
}

func (s *coreTeamService) Update(ctx context.Context, raw string, in CoreTeamPatchInput) (serialize.CoreTeamMember, error) {
	id, err := parseID("id", raw)
	if err != nil {
		return serialize.CoreTeamMember{}, err
	}
	for _, p := range []*string{in.Name, in.Role, in.About, in.ProfileImage} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if in.SocialLinks != nil {
		links := in.SocialLinks.trimmed()
		in.SocialLinks = &links
	}
	if err := validateInput(in); err != nil {
		return serialize.CoreTeamMember{}, err
	}

	patch := model.CoreTeamPatch{
		Name:         in.Name,
		Role:         in.Role,
		About:        in.About,
		ProfileImage: in.ProfileImage,
		UpdatedAt:    model.Now(),
	}
	if in.SocialLinks != nil {
		links := model.SocialLinks(*in.SocialLinks)
		patch.SocialLinks = &links
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("member_id", id.Hex()).Msg("update core team member failed")
		}
		return serialize.CoreTeamMember{}, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return serialize.CoreTeamMember{}, err
	}
	s.audit.note(ctx, newActivity(model.ActionCoreTeamMemberUpdated, "Updated core team member: "+m.Name, nil, idRef(id)))
	return serialize.FromCoreTeamMember(m), nil
}

func (s *coreTeamService) Delete(ctx context.Context, raw string) error {
	id, err := parseID("id", raw)
	if err != nil {
		return err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("member_id", id.Hex()).Msg("delete core team member failed")
		}
		return err
	}
	s.audit.note(ctx, newActivity(model.ActionCoreTeamMemberDeleted, "Removed core team member: "+m.Name, nil, idRef(id)))
	return nil
}

// trimmed drops surrounding whitespace so blank links are stored as absent.
func (l SocialLinksInput) trimmed() SocialLinksInput {
	return SocialLinksInput{
		GitHub:   strings.TrimSpace(l.GitHub),
		Twitter:  strings.TrimSpace(l.Twitter),
		LinkedIn: strings.TrimSpace(l.LinkedIn),
	}
}
