package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// AuthHandler exposes signup, signin and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": accountResponse(account)})
}

// Signin handles POST /auth/signin.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.auth.Signin(c.UserContext(), req.LoginIdentifier(), req.Password)
	if err != nil {
		return err
	}
	data := fiber.Map{
		"account": accountResponse(session.Account),
		"auth":    dto.AuthResponse{Token: session.Token, ExpiresAt: unixTime(session.ExpiresAt)},
	}
	if session.Role != nil {
		data["role"] = roleResponse(session.Role)
	}
	return c.JSON(fiber.Map{"data": data})
}

// Refresh handles POST /auth/refresh. The current token travels as a bearer credential.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	issued, err := h.auth.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"auth": dto.AuthResponse{Token: issued.Token, ExpiresAt: unixTime(issued.ExpiresAt)},
	}})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	if err := h.auth.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	account, err := h.auth.Profile(c.UserContext(), caller.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(account)})
}

// UpdateProfile handles PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.auth.UpdateProfile(c.UserContext(), caller.AccountID, service.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(account)})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}
	if err := h.auth.ChangePassword(c.UserContext(), account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}

// ListUsers handles GET /auth/users.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	var filter repository.AccountFilter
	if role := c.Query("role"); role != "" {
		name := domain.RoleName(role)
		filter.Role = &name
	}
	filter.IsActive = parseBoolQuery(c, "active")
	filter.Search = optionalQuery(c, "search")
	filter.Page.Limit, filter.Page.Offset = parsePage(c)

	accounts, err := h.auth.ListAccounts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, accountResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// SetUserActive handles PATCH /auth/users/:id/active.
func (h *AuthHandler) SetUserActive(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.AccountActiveRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return apperrors.NewValidationError("is_active required", nil)
	}
	account, err := h.auth.SetAccountActive(c.UserContext(), caller, c.Params("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(account)})
}

// ListRoles handles GET /auth/roles.
func (h *AuthHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.auth.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		resp = append(resp, roleResponse(&roles[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}
