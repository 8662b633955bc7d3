package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatup/chatup-server/internal/core"
	"github.com/chatup/chatup-server/internal/store"
)

// UserHandlers provides HTTP handlers for user operations.
type UserHandlers struct {
	store    store.Store
	presence *core.Presence
	router   *core.Router
	log      *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.Store, presence *core.Presence, router *core.Router, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store:    st,
		presence: presence,
		router:   router,
		log:      logger,
	}
}

// CredentialsRequest is the registration and login request body.
type CredentialsRequest struct {
	Login    string `json:"login" binding:"required,min=1,max=64"`
	Password string `json:"password" binding:"required"`
}

// StatusUpdateRequest is the explicit status update body.
type StatusUpdateRequest struct {
	ID       int64 `json:"id" binding:"required"`
	IsActive *bool `json:"is_active" binding:"required"`
}

// BanRequest is the moderation body for PUT /api/users/:id/ban.
type BanRequest struct {
	IsBanned *bool `json:"is_banned" binding:"required"`
}

// UserResponse represents a user in API responses. The password never
// leaves the server.
type UserResponse struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	IsActive bool   `json:"is_active"`
	IsBanned bool   `json:"is_banned"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Login:    u.Login,
		IsActive: u.IsActive,
		IsBanned: u.IsBanned,
	}
}

// Create handles user registration.
// POST /api/users
func (h *UserHandlers) Create(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if existing, err := h.store.GetUserByLogin(c.Request.Context(), req.Login); err == nil && existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "login already registered"})
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.log.Error().Err(err).Str("login", req.Login).Msg("failed to create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.router.UserRegistered(user.ID)
	h.log.Info().Str("login", user.Login).Int64("user_id", user.ID).Msg("user registered")
	c.JSON(http.StatusCreated, userResponse(user))
}

// Login checks credentials and returns the matching user.
// POST /api/users/login
func (h *UserHandlers) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.store.GetUserByLogin(c.Request.Context(), req.Login)
	if err != nil || user.Password != req.Password {
		// Plaintext credential check; hardening authentication is out of scope.
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// List returns users with the is_active field overridden by live presence.
// GET /api/users?offset=0&limit=100
func (h *UserHandlers) List(c *gin.Context) {
	offset, limit := pagination(c)

	users, err := h.store.ListUsers(c.Request.Context(), offset, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		r := userResponse(u)
		// Live presence is authoritative for listings.
		r.IsActive = h.presence.IsOnline(u.ID)
		response = append(response, r)
	}

	c.JSON(http.StatusOK, response)
}

// GetByID returns a single user.
// GET /api/users/:id
func (h *UserHandlers) GetByID(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// ListByStatus returns users filtered by the stored is_active flag.
// GET /api/users/status/:status  (active|inactive)
func (h *UserHandlers) ListByStatus(c *gin.Context) {
	var active bool
	switch c.Param("status") {
	case "active":
		active = true
	case "inactive":
		active = false
	default:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "status not found"})
		return
	}

	users, err := h.store.ListUsersByActive(c.Request.Context(), active)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users by status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, userResponse(u))
	}

	c.JSON(http.StatusOK, response)
}

// UpdateStatus persists an explicit is_active change and routes the
// resulting notifications.
// PUT /api/users/status
func (h *UserHandlers) UpdateStatus(c *gin.Context) {
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid status update request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.store.SetUserActive(c.Request.Context(), req.ID, *req.IsActive)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", req.ID).Msg("failed to update status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	h.router.StatusUpdated(user.ID, user.IsActive)
	c.JSON(http.StatusOK, userResponse(user))
}

// Kick asks a connected user to leave the server. The transport is not
// severed; the client is expected to disconnect itself.
// POST /api/users/:id/kick
func (h *UserHandlers) Kick(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	if _, err := h.store.GetUserByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.router.UserKicked(id)
	c.Status(http.StatusOK)
}

// Ban sets or clears the ban flag. A freshly banned user that is online and
// still marked active is told to leave; unbanning is silent.
// PUT /api/users/:id/ban
func (h *UserHandlers) Ban(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid ban request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.store.SetUserBanned(c.Request.Context(), id, *req.IsBanned)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", id).Msg("failed to update ban flag")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	if user.IsBanned {
		h.router.UserBanned(user.ID, user.IsActive)
	}
	c.JSON(http.StatusOK, userResponse(user))
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return v, true
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return offset, limit
}
