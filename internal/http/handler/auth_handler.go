package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// MeResponse describes the authenticated caller
type MeResponse struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Initials    string `json:"initials"`
	CanApprove  bool   `json:"canApprove"`
	CanBill     bool   `json:"canBill"`
	IsAdmin     bool   `json:"isAdmin"`
}

// @Summary Current user
// @Description Return the authenticated user's identity and capabilities
// @Tags Auth
// @Produce json
// @Success 200 {object} MeResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondJSON(w, http.StatusOK, MeResponse{
		UserID:     userCtx.UserID.String(),
		Name:       userCtx.Name,
		Email:      userCtx.Email,
		Role:       string(userCtx.Role),
		Initials:   userCtx.NameInitials(),
		CanApprove: userCtx.CanApprove(),
		CanBill:    userCtx.CanManageBilling(),
		IsAdmin:    userCtx.IsAdmin(),
	})
}

// @Summary List users
// @Description List registered users
// @Tags Auth
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} domain.ListResponse[domain.User]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)

	users, total, err := h.userService.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.User]{
		Data: users,
		Meta: domain.ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// @Summary Set user role
// @Description Change a user's role
// @Tags Auth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body domain.UpdateUserRoleRequest true "New role"
// @Success 200 {object} domain.User
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/{id}/role [put]
func (h *AuthHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	var req domain.UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.SetRole(r.Context(), id, domain.Role(req.Role))
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to set user role", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to set user role")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// @Summary Activate user
// @Description Reactivate a deactivated user
// @Tags Auth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.User
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/{id}/activate [post]
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	user, err := h.userService.Activate(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to activate user", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to activate user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
