package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/accounts-backend/internal/app/service"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
	"github.com/ikkim/accounts-backend/internal/middleware"
	"github.com/ikkim/accounts-backend/internal/web"
)

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
	sessions             *middleware.SessionMiddleware
}

func NewAuthController(
	authService service.AuthService,
	passwordResetService service.PasswordResetService,
	sessions *middleware.SessionMiddleware,
) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
		sessions:             sessions,
	}
}

type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `form:"email" json:"email"`
}

type ResetPasswordRequest struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Index renders the landing page
// GET /
func (ctrl *AuthController) Index(c *gin.Context) {
	ctrl.page(c, http.StatusOK, web.IndexPage, "Home", nil)
}

// ShowRegister renders the registration form
// GET /register
func (ctrl *AuthController) ShowRegister(c *gin.Context) {
	ctrl.page(c, http.StatusOK, web.RegisterPage, "Register", nil)
}

// Register handles user registration
// POST /register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		ctrl.fail(c, service.ErrFieldsRequired, service.MsgRegistrationFailed, web.RegisterPage, "Register", nil)
		return
	}

	user, err := ctrl.authService.Register(c.Request.Context(), req)
	if err != nil {
		form := gin.H{"Form": map[string]string{"username": req.Username, "email": req.Email}}
		ctrl.fail(c, err, service.MsgRegistrationFailed, web.RegisterPage, "Register", form)
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})
	ctrl.redirect(c, http.StatusCreated, "/login", apperrors.Success(service.MsgRegistered), gin.H{"user": user})
}

// ShowLogin renders the login form
// GET /login
func (ctrl *AuthController) ShowLogin(c *gin.Context) {
	ctrl.page(c, http.StatusOK, web.LoginPage, "Log in", nil)
}

// Login handles user login
// POST /login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		ctrl.fail(c, service.ErrCredentialsRequired, service.MsgRequestFailed, web.LoginPage, "Log in", nil)
		return
	}

	result, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password, middleware.GetSessionID(c))
	if err != nil {
		form := gin.H{"Form": map[string]string{"email": req.Email}}
		ctrl.fail(c, err, service.MsgRequestFailed, web.LoginPage, "Log in", form)
		return
	}

	ctrl.sessions.StartSession(c, result.SessionID, result.Session)
	log.Info("User logged in", map[string]interface{}{
		"user_id": result.User.ID,
	})
	ctrl.redirect(c, http.StatusOK, "/dashboard", apperrors.Success(service.WelcomeMessage(result.User.Username)), gin.H{"user": result.User})
}

// Dashboard renders the page for logged-in users
// GET /dashboard
func (ctrl *AuthController) Dashboard(c *gin.Context) {
	ctrl.page(c, http.StatusOK, web.DashboardPage, "Dashboard", nil)
}

// Logout ends the current session
// GET, POST /logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	username := ""
	if sess, ok := middleware.GetSession(c); ok {
		username = sess.Username
	}

	if err := ctrl.authService.Logout(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		ctrl.failRedirect(c, err, service.MsgRequestFailed, "/dashboard")
		return
	}

	ctrl.sessions.EndSession(c)
	ctrl.redirect(c, http.StatusOK, "/", apperrors.Info(service.GoodbyeMessage(username)), nil)
}

// ShowForgotPassword renders the recovery request form
// GET /forgot-password
func (ctrl *AuthController) ShowForgotPassword(c *gin.Context) {
	ctrl.page(c, http.StatusOK, web.ForgotPasswordPage, "Forgot password", nil)
}

// ForgotPassword handles password reset requests
// POST /forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		ctrl.fail(c, service.ErrEmailRequired, service.MsgRequestFailed, web.ForgotPasswordPage, "Forgot password", nil)
		return
	}

	if err := ctrl.passwordResetService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		// only input errors stay on the form; every other outcome ends at login
		if kind := apperrors.KindOf(err); kind == apperrors.KindMail || kind == apperrors.KindStorage {
			ctrl.failRedirect(c, err, service.MsgRequestFailed, "/login")
			return
		}
		form := gin.H{"Form": map[string]string{"email": req.Email}}
		ctrl.fail(c, err, service.MsgRequestFailed, web.ForgotPasswordPage, "Forgot password", form)
		return
	}

	ctrl.redirect(c, http.StatusOK, "/login", apperrors.Info(service.MsgResetRequested), nil)
}

// ShowResetPassword renders the new password form for a valid token
// GET /reset-password/:token
func (ctrl *AuthController) ShowResetPassword(c *gin.Context) {
	token := c.Param("token")

	if _, err := ctrl.passwordResetService.CheckResetToken(c.Request.Context(), token); err != nil {
		ctrl.failRedirect(c, err, service.MsgRequestFailed, "/forgot-password")
		return
	}

	ctrl.page(c, http.StatusOK, web.ResetPasswordPage, "Reset password", gin.H{"Token": token})
}

// ResetPassword sets a new password using a reset token
// POST /reset-password/:token
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	token := c.Param("token")

	var req ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		ctrl.fail(c, service.ErrFieldsRequired, service.MsgPasswordUpdateFailed, web.ResetPasswordPage, "Reset password", gin.H{"Token": token})
		return
	}

	err := ctrl.passwordResetService.ResetPassword(c.Request.Context(), service.ResetPasswordInput{
		Token:           token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindToken {
			ctrl.failRedirect(c, err, service.MsgPasswordUpdateFailed, "/forgot-password")
			return
		}
		ctrl.fail(c, err, service.MsgPasswordUpdateFailed, web.ResetPasswordPage, "Reset password", gin.H{"Token": token})
		return
	}

	ctrl.redirect(c, http.StatusOK, "/login", apperrors.Success(service.MsgPasswordUpdated), nil)
}

// Health reports liveness
// GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "accounts service is running",
	})
}
