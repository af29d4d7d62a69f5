package httpapi

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xenon007/todo-contract/models"
)

// PageQuery is the page and limit requested by a list endpoint. Page is 1-based.
type PageQuery struct {
	Page  int
	Limit int
}

// Offset is the index of the first item on the page.
func (q PageQuery) Offset() int {
	return models.Pagination{Page: q.Page, Limit: q.Limit}.Offset()
}

// ParsePage reads ?page= and ?limit=. Missing values take page 1 and
// defaultLimit; a limit above maxLimit is clamped.
func ParsePage(c *gin.Context, defaultLimit, maxLimit int) (PageQuery, error) {
	q := PageQuery{Page: 1, Limit: defaultLimit}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return PageQuery{}, fmt.Errorf("%w: page must be a positive integer", models.ErrInvalid)
		}
		q.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return PageQuery{}, fmt.Errorf("%w: limit must be a positive integer", models.ErrInvalid)
		}
		q.Limit = limit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q, nil
}

// ParseID returns the named path parameter, rejecting an empty value.
func ParseID(c *gin.Context, name string) (string, error) {
	id := c.Param(name)
	if id == "" {
		return "", fmt.Errorf("%w: missing %s", models.ErrInvalid, name)
	}
	return id, nil
}
