package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumenhair/storefront-api/internal/api/metrics"
	"github.com/lumenhair/storefront-api/internal/api/session"
	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

const resetRequestedMessage = "If that account exists, a reset link was sent."

type AuthHandler struct {
	auth         ports.AuthService
	tokens       ports.TokenService
	carts        ports.CartService
	cookies      *session.Cookies
	mergeOnLogin bool
	log          zerolog.Logger
}

func NewAuthHandler(
	auth ports.AuthService,
	tokens ports.TokenService,
	carts ports.CartService,
	cookies *session.Cookies,
	mergeOnLogin bool,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		tokens:       tokens,
		carts:        carts,
		cookies:      cookies,
		mergeOnLogin: mergeOnLogin,
		log:          log,
	}
}

type signupRequest struct {
	FullName string `json:"fullName" validate:"required,max=150"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Phone    string `json:"phone"    validate:"omitempty,max=32"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type authResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

// Signup creates an account and starts a session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signup", "invalid").Inc()
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signup", authResult(err)).Inc()
		return err
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("signup", "ok").Inc()
	return c.JSON(http.StatusCreated, authResponse{Message: "Signup successful", User: user})
}

// Login verifies credentials and starts a session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("login", "invalid").Inc()
		return err
	}

	user, err := h.auth.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("login", authResult(err)).Inc()
		return err
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("login", "ok").Inc()
	return c.JSON(http.StatusOK, authResponse{Message: "Login successful", User: user})
}

// Logout clears the session cookie. It succeeds with or without a session.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.ClearToken(c)
	metrics.AuthEventsTotal.WithLabelValues("logout", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// CurrentUser returns the signed-in user including the wishlist.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/auth/user [get]
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.auth.CurrentUser(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}

// ChangePassword replaces the password of the signed-in user.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.Request().Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("password_change", authResult(err)).Inc()
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("password_change", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated"})
}

// ForgotPassword issues a reset link. The response never reveals whether
// the account exists.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/auth/password/forgot [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("password_forgot", "error").Inc()
		h.log.Error().Err(err).Msg("password reset request failed")
	} else {
		metrics.AuthEventsTotal.WithLabelValues("password_forgot", "ok").Inc()
	}
	return c.JSON(http.StatusOK, messageResponse{Message: resetRequestedMessage})
}

// ResetPassword consumes a reset token.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        id     query     string                true  "User id"
// @Param        token  query     string                true  "Reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  map[string]string
// @Router       /api/auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	userID, token := c.QueryParam("id"), c.QueryParam("token")
	if userID == "" || token == "" {
		return domain.Invalid("invalid request")
	}
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.ResetPassword(c.Request().Context(), userID, token, req.Password); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("password_reset", authResult(err)).Inc()
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("password_reset", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset successful. Please log in."})
}

// startSession sets the token cookie and folds any guest cart into the
// user's cart.
func (h *AuthHandler) startSession(c echo.Context, user *domain.User) error {
	token, _, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	h.cookies.SetToken(c, token)

	if h.mergeOnLogin {
		h.adoptGuestCart(c, user.ID)
	}
	return nil
}

func (h *AuthHandler) adoptGuestCart(c echo.Context, userID string) {
	sid := session.GuestID(c)
	if sid == "" || h.carts == nil {
		return
	}
	if err := h.carts.AdoptGuestCart(c.Request().Context(), userID, sid); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("guest cart not merged at login")
		return
	}
	metrics.CartOperationsTotal.WithLabelValues("adopt", "user").Inc()
	h.cookies.ClearGuest(c)
}

func authResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrUserExists), errors.Is(err, domain.ErrPhoneTaken):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInvalidResetToken):
		return "invalid_token"
	default:
		return "error"
	}
}
