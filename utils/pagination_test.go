package utils

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestCreatePaginatedResponseDefaults(t *testing.T) {
	c := paginationContext(t, "")

	resp := CreatePaginatedResponse(c, []string{"a", "b"}, 45)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, DefaultPageSize, resp.PageSize)
	assert.Equal(t, int64(45), resp.TotalRows)
	assert.Equal(t, 3, resp.TotalPages)
}

func TestCreatePaginatedResponseClampsPageSize(t *testing.T) {
	c := paginationContext(t, "page=2&pageSize=9999")

	resp := CreatePaginatedResponse(c, nil, 250)
	assert.Equal(t, 2, resp.CurrentPage)
	assert.Equal(t, MaxPageSize, resp.PageSize)
	assert.Equal(t, 3, resp.TotalPages)
}

func TestCreatePaginatedResponseNoRows(t *testing.T) {
	c := paginationContext(t, "page=-3&pageSize=0")

	resp := CreatePaginatedResponse(c, nil, 0)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, DefaultPageSize, resp.PageSize)
	assert.Equal(t, 0, resp.TotalPages)
}

func TestOrderClauseRestrictsColumns(t *testing.T) {
	allowed := map[string]string{"clientName": "client_name", "createdAt": "created_at"}

	c := paginationContext(t, "orderBy=clientName&order=desc")
	assert.Equal(t, "client_name desc", OrderClause(c, allowed, "created_at desc"))

	c = paginationContext(t, "orderBy=clientName")
	assert.Equal(t, "client_name asc", OrderClause(c, allowed, "created_at desc"))

	// Unknown columns fall back instead of reaching the SQL string
	hostile := url.Values{"orderBy": {"password;DROP TABLE users"}, "order": {"desc"}}
	c = paginationContext(t, hostile.Encode())
	assert.Equal(t, "created_at desc", OrderClause(c, allowed, "created_at desc"))
}
