package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	list := []string{"a", "b", "c"}
	if !Contains("b", list) {
		t.Fatalf("expected Contains to return true for existing item")
	}
	if Contains("x", list) {
		t.Fatalf("expected Contains to return false for missing item")
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "admin@clinic.test", NormalizeEmail("  Admin@Clinic.TEST "))
	assert.Equal(t, "staff@clinic.test", NormalizeEmail("staff@clinic.test"))
	assert.Empty(t, NormalizeEmail("   "))
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trim leading whitespace",
			input:    "  John Doe",
			expected: "John Doe",
		},
		{
			name:     "trim trailing whitespace",
			input:    "John Doe  ",
			expected: "John Doe",
		},
		{
			name:     "trim leading and trailing whitespace",
			input:    "  John Doe  ",
			expected: "John Doe",
		},
		{
			name:     "collapse multiple internal spaces",
			input:    "John  Doe",
			expected: "John Doe",
		},
		{
			name:     "collapse many internal spaces",
			input:    "John     Doe",
			expected: "John Doe",
		},
		{
			name:     "trim and collapse combined",
			input:    "  John    Doe  ",
			expected: "John Doe",
		},
		{
			name:     "already normalized",
			input:    "John Doe",
			expected: "John Doe",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "tabs and newlines",
			input:    "John\t\nDoe",
			expected: "John Doe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeName(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestEnvelopeHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		ok     bool
	}{
		{"user error", func(c *gin.Context) { CallUserError(c, APIErrorParams{Msg: "bad", Err: errors.New("x")}) }, http.StatusBadRequest, false},
		{"not found", func(c *gin.Context) { CallErrorNotFound(c, APIErrorParams{Msg: "missing", Err: errors.New("x")}) }, http.StatusNotFound, false},
		{"conflict", func(c *gin.Context) { CallConflict(c, APIErrorParams{Msg: "busy", Err: errors.New("x")}) }, http.StatusConflict, false},
		{"bad gateway", func(c *gin.Context) { CallBadGateway(c, APIErrorParams{Msg: "upstream", Err: errors.New("x")}) }, http.StatusBadGateway, false},
		{"server error without err", func(c *gin.Context) { CallServerError(c, APIErrorParams{Msg: "boom"}) }, http.StatusInternalServerError, false},
		{"created", func(c *gin.Context) { CallSuccessCreated(c, APISuccessParams{Msg: "made", Data: 1}) }, http.StatusCreated, true},
		{"ok", func(c *gin.Context) { CallSuccessOK(c, APISuccessParams{Msg: "fine"}) }, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.call(c)

			assert.Equal(t, tt.status, w.Code)
			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.ok, resp.Success)
		})
	}
}

func TestCallUserNotAuthorized_CarriesLoginRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	CallUserNotAuthorized(c, APIErrorParams{Msg: "login required", Err: errors.New("no session")})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/login", data["redirect"])
}
