package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Params
	}{
		{"defaults", 0, 0, Params{Page: 1, Limit: 20, Offset: 0}},
		{"third page", 3, 10, Params{Page: 3, Limit: 10, Offset: 20}},
		{"limit capped", 1, 500, Params{Page: 1, Limit: 100, Offset: 0}},
		{"negative page", -4, 5, Params{Page: 1, Limit: 5, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.page, tt.limit))
		})
	}
}

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/invoices?page=2&limit=abc", nil)

	p := Parse(c)

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, DefaultLimit, p.Offset)
}
