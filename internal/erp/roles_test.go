package erp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
	"github.com/CarlosJoao1/vivae-erp-console/internal/erp"
)

func TestPoliciesAllows(t *testing.T) {
	policies := erp.Policies{
		"admin": {"sales": {"create": true, "delete": true}},
		"tech":  {"sales": {"create": false}},
	}

	assert.True(t, policies.Allows("admin", "sales", "create"))
	assert.False(t, policies.Allows("tech", "sales", "create"))
	assert.False(t, policies.Allows("tech", "sales", "delete"), "unset action denies")
	assert.False(t, policies.Allows("tech", "production", "create"), "unset feature denies")
	assert.False(t, policies.Allows("guest", "sales", "create"), "unknown role denies")
	assert.False(t, erp.Policies(nil).Allows("admin", "sales", "create"))
}

func TestPoliciesRoundTrip(t *testing.T) {
	router := gin.New()
	router.GET("/roles/policies", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"policies": gin.H{
			"admin": gin.H{"roles": gin.H{"update": true}},
		}})
	})
	var gotBody struct {
		Policies erp.Policies `json:"policies"`
	}
	router.PUT("/roles/policies", func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&gotBody))
		c.JSON(http.StatusOK, gin.H{})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	svc := erp.NewRolesService(api.NewClient(srv.URL))

	policies, err := svc.GetPolicies(context.Background())
	require.NoError(t, err)
	assert.True(t, policies.Allows("admin", "roles", "update"))

	policies["tech"] = map[string]map[string]bool{"sales": {"read": true}}
	require.NoError(t, svc.UpdatePolicies(context.Background(), policies))
	assert.True(t, gotBody.Policies.Allows("tech", "sales", "read"),
		"updates travel inside the policies envelope")
	assert.True(t, gotBody.Policies.Allows("admin", "roles", "update"))
}
