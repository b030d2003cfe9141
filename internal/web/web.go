package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names
const (
	IndexPage          = "index.html"
	RegisterPage       = "register.html"
	LoginPage          = "login.html"
	DashboardPage      = "dashboard.html"
	ForgotPasswordPage = "forgot_password.html"
	ResetPasswordPage  = "reset_password.html"
)

// Templates parses every embedded page and the shared layout.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}
