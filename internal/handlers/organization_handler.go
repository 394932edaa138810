package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/notify"
	"github.com/pawhub/backend/internal/repositories"
	"gorm.io/gorm"
)

// OrganizationHandler handles organizations and their membership lifecycle.
// Membership mutations run inside one transaction together with the
// notifications they generate; the live pushes are flushed after commit.
type OrganizationHandler struct {
	db      *gorm.DB
	orgRepo repositories.OrganizationRepository
	fanout  *notify.Fanout
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(db *gorm.DB, orgRepo repositories.OrganizationRepository, fanout *notify.Fanout) *OrganizationHandler {
	return &OrganizationHandler{db: db, orgRepo: orgRepo, fanout: fanout}
}

// RegisterOrganizationRoutes registers organization-related routes
func (h *OrganizationHandler) RegisterOrganizationRoutes(g *echo.Group) {
	g.POST("/organizations", h.CreateOrganization)
	g.GET("/organizations", h.ListOrganizations)
	g.GET("/organizations/:id", h.GetOrganization)
	g.GET("/organizations/:id/members", h.ListMembers)
	g.POST("/organizations/:id/members", h.InviteMember)
	g.POST("/organizations/:id/members/confirm", h.ConfirmMembership)
	g.POST("/organizations/:id/members/:member_id/accept", h.AcceptMember)
	g.DELETE("/organizations/:id/members/:member_id", h.RemoveMember)
}

// CreateOrganization creates an organization owned by the authenticated user
func (h *OrganizationHandler) CreateOrganization(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	org := &models.Organization{
		Type:   req.Type,
		Name:   req.Name,
		Email:  req.Email,
		UserID: userID,
	}

	if err := h.orgRepo.CreateOrganization(org); err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusCreated, org)
}

func (h *OrganizationHandler) GetOrganization(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	org, err := h.orgRepo.GetOrganizationByID(id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) ListOrganizations(c echo.Context) error {
	limit, offset := parsePagination(c)
	orgs, err := h.orgRepo.ListOrganizations(limit, offset)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, orgs)
}

func (h *OrganizationHandler) ListMembers(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	members, err := h.orgRepo.ListMembers(id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, members)
}

// requireManager checks the acting user holds an owner or admin role in the
// organization.
func (h *OrganizationHandler) requireManager(userID, orgID uint) error {
	member, err := h.orgRepo.GetMember(userID, orgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "You are not a member of this organization")
	}
	if member.Role != models.MemberRoleOwner && member.Role != models.MemberRoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient organization role")
	}
	return nil
}

// InviteMember invites a user into the organization. The organization's
// owner is notified about the new invitation.
func (h *OrganizationHandler) InviteMember(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	orgID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.InviteMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requireManager(actorID, orgID); err != nil {
		return err
	}

	role := req.Role
	if role == "" {
		role = models.MemberRoleMember
	}

	member := &models.OrganizationMember{
		UserID:         req.UserID,
		OrganizationID: orgID,
		Role:           role,
	}

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresOrganizationRepository(tx)
		if err := repo.CreateMember(member); err != nil {
			return err
		}
		pending = h.fanout.MemberInvited(tx, member, actorID)
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.JSON(http.StatusCreated, member)
}

// ConfirmMembership lets the invited user confirm their own invitation. The
// organization's owner is notified of the confirmation.
func (h *OrganizationHandler) ConfirmMembership(c echo.Context) error {
	userID := getUserIDFromContext(c)
	orgID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	member, err := h.orgRepo.GetMember(userID, orgID)
	if err != nil {
		return apiError(err)
	}
	if member.InvitationConfirmed {
		return c.JSON(http.StatusOK, member)
	}

	member.InvitationConfirmed = true

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresOrganizationRepository(tx)
		if err := repo.UpdateMember(member); err != nil {
			return err
		}
		pending = h.fanout.MemberConfirmed(tx, member)
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.JSON(http.StatusOK, member)
}

// AcceptMember lets an owner or admin accept a pending member. The accepted
// user is notified.
func (h *OrganizationHandler) AcceptMember(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	orgID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	memberID, err := parseIDParam(c, "member_id")
	if err != nil {
		return err
	}

	if err := h.requireManager(actorID, orgID); err != nil {
		return err
	}

	member, err := h.orgRepo.GetMemberByID(memberID)
	if err != nil {
		return apiError(err)
	}
	if member.OrganizationID != orgID {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found in this organization")
	}

	member.InvitationConfirmed = true

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresOrganizationRepository(tx)
		if err := repo.UpdateMember(member); err != nil {
			return err
		}
		pending = h.fanout.MemberAccepted(tx, member, actorID)
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.JSON(http.StatusOK, member)
}

// RemoveMember removes a member from the organization and notifies them.
func (h *OrganizationHandler) RemoveMember(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	orgID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	memberID, err := parseIDParam(c, "member_id")
	if err != nil {
		return err
	}

	if err := h.requireManager(actorID, orgID); err != nil {
		return err
	}

	member, err := h.orgRepo.GetMemberByID(memberID)
	if err != nil {
		return apiError(err)
	}
	if member.OrganizationID != orgID {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found in this organization")
	}
	if member.Role == models.MemberRoleOwner {
		return echo.NewHTTPError(http.StatusForbidden, "The organization owner cannot be removed")
	}

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresOrganizationRepository(tx)
		if err := repo.DeleteMember(memberID); err != nil {
			return err
		}
		pending = h.fanout.MemberRemoved(tx, member, actorID)
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.NoContent(http.StatusNoContent)
}
