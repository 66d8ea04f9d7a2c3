package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/permission"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/handler/http/response"
)

type PermissionHandler interface {
	MyPermissions(w http.ResponseWriter, r *http.Request)
	Matrix(w http.ResponseWriter, r *http.Request)
	ReplaceMatrix(w http.ResponseWriter, r *http.Request)
	ListGrants(w http.ResponseWriter, r *http.Request)
	CreateGrant(w http.ResponseWriter, r *http.Request)
	DeleteGrants(w http.ResponseWriter, r *http.Request)
}

type permissionHandlerImpl struct {
	permissionService permission.Service
}

func NewPermissionHandler(permissionService permission.Service) PermissionHandler {
	return &permissionHandlerImpl{
		permissionService: permissionService,
	}
}

// MyPermissions returns the caller's effective permission names. The client
// caches this for UI gating; the server-side guards stay authoritative.
func (h *permissionHandlerImpl) MyPermissions(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	role, _ := claims["role"].(string)
	if role == "admin" {
		// Admin holds everything; report the full known permission set.
		response.Success(w, map[string]interface{}{
			"role":        role,
			"permissions": "*",
		})
		return
	}

	response.Success(w, map[string]interface{}{
		"role":        role,
		"permissions": h.permissionService.PermissionsForRole(role),
	})
}

// Matrix implements PermissionHandler.
func (h *permissionHandlerImpl) Matrix(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.permissionService.Matrix())
}

// ReplaceMatrix implements PermissionHandler.
func (h *permissionHandlerImpl) ReplaceMatrix(w http.ResponseWriter, r *http.Request) {
	var matrix permission.Matrix

	if err := json.NewDecoder(r.Body).Decode(&matrix); err != nil {
		slog.Error("ReplaceMatrix decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.permissionService.ReplaceMatrix(r.Context(), matrix); err != nil {
		slog.Error("ReplaceMatrix service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permission matrix replaced", h.permissionService.Matrix())
}

// ListGrants implements PermissionHandler.
func (h *permissionHandlerImpl) ListGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.permissionService.ListGrants(r.Context())
	if err != nil {
		slog.Error("ListGrants service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, grants)
}

// CreateGrant implements PermissionHandler.
func (h *permissionHandlerImpl) CreateGrant(w http.ResponseWriter, r *http.Request) {
	var req permission.CreateGrantRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateGrant decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	grant, err := h.permissionService.CreateGrant(r.Context(), req)
	if err != nil {
		slog.Error("CreateGrant service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Permission granted", grant)
}

// DeleteGrants implements PermissionHandler.
func (h *permissionHandlerImpl) DeleteGrants(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, "name query parameter is required", nil)
		return
	}

	if err := h.permissionService.DeleteGrants(r.Context(), name); err != nil {
		slog.Error("DeleteGrants service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permission revoked", nil)
}
