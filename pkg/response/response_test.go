package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessWithPagination(t *testing.T) {
	r := SuccessWithPagination(200, []int{1, 2}, 2, 20, 41)

	assert.Equal(t, "success", r.Status)
	assert.Equal(t, 200, r.StatusCode)
	if assert.NotNil(t, r.Meta) {
		assert.Equal(t, 2, r.Meta.Page)
		assert.Equal(t, int64(41), r.Meta.Total)
		assert.Equal(t, int64(3), r.Meta.TotalPages)
	}
}

func TestError(t *testing.T) {
	r := Error(404, "invoice not found")

	assert.Equal(t, "error", r.Status)
	assert.Equal(t, "invoice not found", r.Error)
	assert.Nil(t, r.Data)
	assert.Nil(t, r.Meta)
}
