package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineRequest struct {
	ProductID string           `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"min=1"`
	Price     *decimal.Decimal `json:"price" binding:"omitempty,gte=0"`
}

type cartRequest struct {
	Note  string        `json:"note" binding:"max=5"`
	Items []lineRequest `json:"items" binding:"dive"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req cartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	t.Run("field errors use json paths", func(t *testing.T) {
		w := postJSON(router, `{"note":"too long","items":[{"product_id":"P1","quantity":0,"price":"-1"}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Must be at most 5 characters", fields["note"])
		assert.Equal(t, "Must be at least 1", fields["items[0].quantity"])
		assert.Equal(t, "Must be greater than or equal to 0", fields["items[0].price"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postJSON(router, `{"items":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
	})

	t.Run("valid body", func(t *testing.T) {
		w := postJSON(router, `{"items":[{"product_id":"P1","quantity":2,"price":"0"}]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
