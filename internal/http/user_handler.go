package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"acm-portal/internal/domain"
	"acm-portal/internal/service"
	"acm-portal/internal/storage"
)

// UserHandlerConfig agrupa opciones de los endpoints de usuarios.
type UserHandlerConfig struct {
	// ClientURL es la base del front-end para los redirects de confirmacion y reset.
	ClientURL string
	// ExposeResetToken incluye el token de reset en /forgot. Solo para desarrollo.
	ExposeResetToken bool
	MaxResumeBytes   int64
}

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
	resumes  storage.ResumeStore
	cfg      UserHandlerConfig
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService, resumes storage.ResumeStore, cfg UserHandlerConfig) *UserHandler {
	if resumes == nil {
		resumes = storage.NewDisabledStore()
	}
	if cfg.MaxResumeBytes <= 0 {
		cfg.MaxResumeBytes = 5 << 20
	}
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
		resumes:  resumes,
		cfg:      cfg,
	}
}

// Register maneja POST /register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email          string `json:"email" binding:"required"`
		Password       string `json:"password" binding:"required"`
		FirstName      string `json:"firstName"`
		LastName       string `json:"lastName"`
		Classification string `json:"classification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Invalid request"))
		return
	}

	res, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Classification: req.Classification,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "conflict", "msg": "Email is already taken", "emailAvailable": false})
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, errorBody("invalid_email", "Invalid email"))
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, errorBody("invalid_password", "Password must be between 8 and 72 characters"))
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not register user"))
		}
		return
	}

	view := res.User.View()
	view.ConfirmEmailToken = res.ConfirmToken
	c.JSON(http.StatusCreated, gin.H{"user": view})
}

// Login maneja POST /login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Invalid request"))
		return
	}

	user, err := h.userServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, errorBody("not_found", "User Not Found"))
		case errors.Is(err, service.ErrNotVerified):
			c.JSON(http.StatusNotFound, errorBody("not_verified", "User Not Verified"))
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Wrong password"))
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not login"))
		}
		return
	}

	h.respondWithSession(c, user)
}

// Forgot maneja POST /forgot. Un email desconocido igual recibe 200.
func (h *UserHandler) Forgot(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forgot request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Invalid request"))
		return
	}

	res, err := h.userServ.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusOK, gin.H{"recipient": nil, "msg": nil})
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, errorBody("invalid_email", "Invalid email"))
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, errorBody("rate_limited", "Too many requests"))
		case errors.Is(err, service.ErrEmailSendFailure):
			c.JSON(http.StatusServiceUnavailable, errorBody("email_unavailable", "Email delivery unavailable"))
		default:
			h.logger.Error("forgot password failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not start password reset"))
		}
		return
	}

	recipient := gin.H{"email": res.Recipient}
	if h.cfg.ExposeResetToken {
		recipient["resetPasswordToken"] = res.Token
		recipient["resetPasswordExpires"] = res.ExpiresAt
	}
	c.JSON(http.StatusOK, gin.H{"recipient": recipient, "msg": nil})
}

// Confirm maneja GET /confirm/:token y redirige al front-end.
func (h *UserHandler) Confirm(c *gin.Context) {
	if _, err := h.userServ.ConfirmEmail(c.Request.Context(), c.Param("token")); err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			h.logger.Error("confirm email failed", zap.Error(err))
		}
		c.Redirect(http.StatusFound, h.clientURL("/auth/", url.Values{"verify": {"failure"}}))
		return
	}
	c.Redirect(http.StatusFound, h.clientURL("/auth/", url.Values{"verify": {"success"}}))
}

// ResendConfirmation maneja POST /confirmation.
func (h *UserHandler) ResendConfirmation(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid confirmation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Invalid request"))
		return
	}

	if err := h.userServ.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, errorBody("not_found", "User Not Found"))
		case errors.Is(err, service.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, errorBody("already_verified", "User already verified"))
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, errorBody("invalid_email", "Invalid email"))
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, errorBody("rate_limited", "Too many requests"))
		case errors.Is(err, service.ErrEmailSendFailure):
			c.JSON(http.StatusServiceUnavailable, errorBody("email_unavailable", "Email delivery unavailable"))
		default:
			h.logger.Error("resend confirmation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not resend confirmation"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// ResetLanding maneja GET /reset/:token, el link que llega por correo.
func (h *UserHandler) ResetLanding(c *gin.Context) {
	token := c.Param("token")
	if _, err := h.userServ.CheckResetToken(c.Request.Context(), token); err != nil {
		reason := "invalid"
		switch {
		case errors.Is(err, service.ErrExpired):
			reason = "expired"
		case errors.Is(err, service.ErrNotFound):
		default:
			h.logger.Error("check reset token failed", zap.Error(err))
			reason = "error"
		}
		c.Redirect(http.StatusFound, h.clientURL("/auth/", url.Values{"err": {reason}}))
		return
	}
	c.Redirect(http.StatusFound, h.clientURL("/auth/forgot/redirect/", url.Values{"token": {token}}))
}

// Reset maneja POST /reset/:token.
func (h *UserHandler) Reset(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Invalid request"))
		return
	}

	user, err := h.userServ.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, errorBody("not_found", "Password reset token is invalid"))
		case errors.Is(err, service.ErrExpired):
			c.JSON(http.StatusGone, errorBody("expired", "Password reset token has expired"))
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, errorBody("invalid_password", "Password must be between 8 and 72 characters"))
		default:
			h.logger.Error("reset password failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not reset password"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.View()})
}

// Profile maneja GET /profile.
func (h *UserHandler) Profile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
		return
	}
	user, err := h.userServ.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeProfileError(c, "get profile failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.View()})
}

// UpdateResume maneja PUT /update-resume. El id debe ser el del token.
func (h *UserHandler) UpdateResume(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
		return
	}
	var req struct {
		ID   string `json:"id" binding:"required"`
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update resume request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Invalid request"))
		return
	}
	if req.ID != claims.UserID {
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
		return
	}

	user, err := h.userServ.UpdateResume(c.Request.Context(), claims.UserID, req.Path)
	if err != nil {
		h.writeProfileError(c, "update resume failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.View()})
}

// UploadResume maneja POST /upload-resume (multipart, campo "resume").
func (h *UserHandler) UploadResume(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxResumeBytes+(1<<20))
	fh, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("too_large", "Resume is too large"))
			return
		}
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Missing resume file"))
		return
	}
	if fh.Size > h.cfg.MaxResumeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody("too_large", "Resume is too large"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		h.logger.Error("open resume upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not read upload"))
		return
	}
	defer file.Close()

	key, err := h.resumes.Save(c.Request.Context(), claims.UserID, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("too_large", "Resume is too large"))
		case errors.Is(err, storage.ErrUnsupportedFormat):
			c.JSON(http.StatusUnsupportedMediaType, errorBody("unsupported_format", "Resume must be a PDF, Word document or image"))
		case errors.Is(err, storage.ErrDisabled):
			c.JSON(http.StatusServiceUnavailable, errorBody("storage_unavailable", "Resume uploads are not available"))
		default:
			h.logger.Error("store resume failed", zap.Error(err), zap.String("user_id", claims.UserID))
			c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not store resume"))
		}
		return
	}

	user, err := h.userServ.UpdateResume(c.Request.Context(), claims.UserID, key)
	if err != nil {
		h.writeProfileError(c, "update resume failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.View()})
}

// UpdateUser maneja PUT /update-user y devuelve un token con los claims nuevos.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
		return
	}
	var req struct {
		User struct {
			FirstName      *string `json:"firstName"`
			LastName       *string `json:"lastName"`
			Classification *string `json:"classification"`
		} `json:"user"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Invalid request"))
		return
	}

	user, err := h.userServ.UpdateProfile(c.Request.Context(), claims.UserID, domain.ProfilePatch{
		FirstName:      req.User.FirstName,
		LastName:       req.User.LastName,
		Classification: req.User.Classification,
	})
	if err != nil {
		h.writeProfileError(c, "update user failed", err)
		return
	}
	h.respondWithSession(c, user)
}

func (h *UserHandler) respondWithSession(c *gin.Context, user domain.User) {
	token, err := h.jwtServ.Issue(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not issue token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user.View()})
}

func (h *UserHandler) writeProfileError(c *gin.Context, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not_found", "User Not Found"))
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not process request"))
	}
}

func (h *UserHandler) clientURL(path string, q url.Values) string {
	return h.cfg.ClientURL + path + "?" + q.Encode()
}
