package handler

import (
	"strconv"

	"billing/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// optionalPage returns (0, 0) when the client asked for no limit, meaning the
// whole list. Otherwise page and limit are clamped like pagination.Parse.
func optionalPage(c *gin.Context) (int, int) {
	if c.Query("limit") == "" {
		return 0, 0
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(pagination.DefaultPage)))
	limit, _ := strconv.Atoi(c.Query("limit"))
	p := pagination.New(page, limit)
	return p.Page, p.Limit
}
