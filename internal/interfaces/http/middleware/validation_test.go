package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitledger/backend/internal/interfaces/http/dto"
)

type paymentBody struct {
	InstallmentID string  `json:"installment_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER E_WALLET"`
}

func bindError(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	SetupValidator()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req paymentBody
	err := c.ShouldBindJSON(&req)
	require.Error(t, err)
	return err
}

func TestFormatValidationErrors(t *testing.T) {
	t.Run("reports each failed field by its json name", func(t *testing.T) {
		err := bindError(t, `{"amount": -5, "method": "CHECK"}`)

		resp := FormatValidationErrors(err, "req-1")

		require.NotNil(t, resp.Error)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)

		fields := make(map[string]string, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", fields["installment_id"])
		assert.Equal(t, "Must be greater than 0", fields["amount"])
		assert.Contains(t, fields["method"], "Must be one of")
	})

	t.Run("non-validator errors fall back to a plain bad request", func(t *testing.T) {
		resp := FormatValidationErrors(errors.New("unexpected EOF"), "req-2")

		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "unexpected EOF", resp.Error.Message)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("malformed json surfaces the decode error", func(t *testing.T) {
		err := bindError(t, `{"amount": `)

		resp := FormatValidationErrors(err, "req-3")

		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})
}
