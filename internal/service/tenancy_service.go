package service

import (
	"errors"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"
	"go-backoffice/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenancyService is the authorization gate every other component calls
// before touching project state. Default-deny: a missing membership, an
// inactive membership, or an inactive project all reject.
type TenancyService interface {
	ResolveRoles(userID uuid.UUID) ([]model.ProjectMember, error)
	Authorize(userID, projectID uuid.UUID, action model.Action) error

	CreateProject(userID uuid.UUID, req *CreateProjectRequest) (*model.Project, error)
	Members(userID, projectID uuid.UUID) ([]model.ProjectMember, error)
	AddMember(userID, projectID uuid.UUID, req *MemberRequest) (*model.ProjectMember, error)
	UpdateMember(userID, projectID, targetUserID uuid.UUID, req *MemberUpdateRequest) (*model.ProjectMember, error)
}

type CreateProjectRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

type MemberRequest struct {
	UserID uuid.UUID  `json:"user_id" validate:"uuid_required"`
	Role   model.Role `json:"role" validate:"required,oneof=owner admin user viewer"`
}

type MemberUpdateRequest struct {
	Role     *model.Role `json:"role,omitempty"`
	IsActive *bool       `json:"is_active,omitempty"`
}

type tenancyService struct {
	projectRepo repository.ProjectRepository
}

func NewTenancyService(projectRepo repository.ProjectRepository) TenancyService {
	return &tenancyService{projectRepo: projectRepo}
}

// ResolveRoles lists the caller's active memberships in active projects.
func (s *tenancyService) ResolveRoles(userID uuid.UUID) ([]model.ProjectMember, error) {
	members, err := s.projectRepo.MembershipsByUser(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to load memberships", err)
	}
	active := make([]model.ProjectMember, 0, len(members))
	for _, m := range members {
		if m.Project != nil && !m.Project.IsActive {
			continue
		}
		active = append(active, m)
	}
	return active, nil
}

func (s *tenancyService) Authorize(userID, projectID uuid.UUID, action model.Action) error {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("project not found")
		}
		return apperr.Wrap(apperr.KindInfrastructure, "failed to load project", err)
	}
	if !project.IsActive {
		return apperr.Unauthorized("project is inactive")
	}

	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthorized("no role in this project")
		}
		return apperr.Wrap(apperr.KindInfrastructure, "failed to load membership", err)
	}
	if !member.IsActive {
		return apperr.Unauthorized("membership is inactive")
	}
	if !member.Role.Can(action) {
		return apperr.Newf(apperr.KindUnauthorized, "role '%s' may not perform '%s'", member.Role, action)
	}
	return nil
}

// CreateProject opens a new tenant with the caller as its first owner.
func (s *tenancyService) CreateProject(userID uuid.UUID, req *CreateProjectRequest) (*model.Project, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	project := &model.Project{
		Name:     req.Name,
		Slug:     req.Slug,
		IsActive: true,
	}
	project.CreatedBy = userID.String()
	project.UpdatedBy = userID.String()

	owner := &model.ProjectMember{
		UserID:   userID,
		Role:     model.RoleOwner,
		IsActive: true,
	}
	owner.CreatedBy = userID.String()
	owner.UpdatedBy = userID.String()

	if err := s.projectRepo.Create(project, owner); err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to create project", err)
	}
	return project, nil
}

func (s *tenancyService) Members(userID, projectID uuid.UUID) ([]model.ProjectMember, error) {
	if err := s.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}
	members, err := s.projectRepo.Members(projectID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to list members", err)
	}
	return members, nil
}

func (s *tenancyService) AddMember(userID, projectID uuid.UUID, req *MemberRequest) (*model.ProjectMember, error) {
	if err := s.Authorize(userID, projectID, model.ActionMemberManage); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if _, err := s.projectRepo.FindMember(projectID, req.UserID); err == nil {
		return nil, apperr.Validation("user is already a member of this project")
	}

	member := &model.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      req.Role,
		IsActive:  true,
	}
	member.CreatedBy = userID.String()
	member.UpdatedBy = userID.String()

	if err := s.projectRepo.CreateMember(member); err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to add member", err)
	}
	return member, nil
}

// UpdateMember changes a member's role or active flag. The last active owner
// of a project cannot be demoted or deactivated.
func (s *tenancyService) UpdateMember(userID, projectID, targetUserID uuid.UUID, req *MemberUpdateRequest) (*model.ProjectMember, error) {
	if err := s.Authorize(userID, projectID, model.ActionMemberManage); err != nil {
		return nil, err
	}

	member, err := s.projectRepo.FindMember(projectID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("member not found")
		}
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to load member", err)
	}

	demotingOwner := member.Role == model.RoleOwner && member.IsActive &&
		((req.Role != nil && *req.Role != model.RoleOwner) || (req.IsActive != nil && !*req.IsActive))
	if demotingOwner {
		owners, err := s.projectRepo.CountActiveOwners(projectID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to count owners", err)
		}
		if owners <= 1 {
			return nil, apperr.Validation("cannot demote or deactivate the last owner")
		}
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, apperr.Validation("unknown role")
		}
		member.Role = *req.Role
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	member.UpdatedBy = userID.String()

	if err := s.projectRepo.SaveMember(member); err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to update member", err)
	}
	return member, nil
}
