package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	pages := []string{IndexPage, RegisterPage, LoginPage, DashboardPage, ForgotPasswordPage, ResetPasswordPage}
	for _, page := range pages {
		t.Run(page, func(t *testing.T) {
			data := map[string]interface{}{
				"Title":   "Test",
				"Form":    map[string]string{"email": "alice@x.com"},
				"Token":   "tok",
				"Session": map[string]interface{}{"Username": "alice", "Email": "alice@x.com"},
				"Notices": []map[string]string{{"Category": "success", "Message": "Saved <b>"}},
			}

			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, page, data))
			assert.Contains(t, buf.String(), "<title>Test</title>")
			assert.Contains(t, buf.String(), "Saved &lt;b&gt;")
		})
	}
}

func TestTemplates_ResetFormKeepsToken(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, ResetPasswordPage, map[string]interface{}{"Token": "abc.def.ghi"}))
	assert.Contains(t, buf.String(), `action="/reset-password/abc.def.ghi"`)
}
