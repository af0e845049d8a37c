package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kit-rental/internal/middleware"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/pricing"
	"github.com/iliyamo/kit-rental/internal/service"
	"github.com/iliyamo/kit-rental/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth         *service.AuthService
	Drafts       *service.CheckoutService
	Loyalty      pricing.LoyaltyRule
	JWTSecret    string
	AccessTTLMin int
}

// NewAuthHandler wires an AuthHandler.
func NewAuthHandler(auth *service.AuthService, drafts *service.CheckoutService, secret string, ttlMin int) *AuthHandler {
	return &AuthHandler{Auth: auth, Drafts: drafts, Loyalty: drafts.LoyaltyRule(), JWTSecret: secret, AccessTTLMin: ttlMin}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profile struct {
	model.User
	Role      string `json:"role"`
	CanRedeem bool   `json:"can_redeem_points"`
}

type authResp struct {
	User   profile           `json:"user"`
	Access utils.AccessToken `json:"access"`
}

func (h *AuthHandler) profile(u model.User) profile {
	return profile{User: u, Role: u.Role(), CanRedeem: h.Loyalty.CanRedeem(u.LoyaltyPoints)}
}

func (h *AuthHandler) issue(c echo.Context, status int, u model.User) error {
	access, err := utils.NewAccessToken(h.JWTSecret, u.Email, u.Role(), h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(status, authResp{User: h.profile(u), Access: access})
}

// Register handles POST /v1/auth/register: create the account and sign in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Auth.Signup(ctx, service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return respondError(c, err, "create user failed")
	}
	return h.issue(c, http.StatusCreated, u)
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "login failed")
	}
	return h.issue(c, http.StatusOK, u)
}

// Logout handles POST /v1/auth/logout.  Access tokens are stateless, so
// logging out drops the browsing session's draft booking and the client
// forgets its token.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Drafts.DiscardDraft(ctx, middleware.SessionID(c)); err != nil {
		return respondError(c, err, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me: the signed-in user's profile and loyalty balance.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	u, err := h.Auth.Profile(ctx, middleware.UserEmail(c))
	if err != nil {
		return respondError(c, err, "load profile failed")
	}
	return c.JSON(http.StatusOK, h.profile(u))
}
