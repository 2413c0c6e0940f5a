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

// newProductionFixture wires a gin server that echoes the decoded body back
// inside the named envelope, the way the production routes respond.
func newProductionFixture(t *testing.T) (*erp.ProductionService, *gin.Engine) {
	t.Helper()
	router := gin.New()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return erp.NewProductionService(api.NewClient(srv.URL)), router
}

func TestWorkCenterUpdate(t *testing.T) {
	svc, router := newProductionFixture(t)
	router.PUT("/production/work-centers/:id", func(c *gin.Context) {
		var body erp.WorkCenter
		require.NoError(t, c.ShouldBindJSON(&body))
		body.ID = c.Param("id")
		c.JSON(http.StatusOK, gin.H{"work_center": body})
	})

	got, err := svc.UpdateWorkCenter(context.Background(), "wc1", &erp.WorkCenter{
		Code: "ASSEMBLY", Name: "Assembly", Capacity: 16, Blocked: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "wc1", got.ID)
	assert.Equal(t, "ASSEMBLY", got.Code)
	assert.Equal(t, 16.0, got.Capacity)
	assert.True(t, got.Blocked)
}

func TestMachineCenterLifecycle(t *testing.T) {
	svc, router := newProductionFixture(t)
	router.POST("/production/machine-centers", func(c *gin.Context) {
		var body erp.MachineCenter
		require.NoError(t, c.ShouldBindJSON(&body))
		body.ID = "mc1"
		c.JSON(http.StatusCreated, gin.H{"machine_center": body})
	})
	router.GET("/production/machine-centers/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"machine_center": gin.H{
			"id": c.Param("id"), "code": "MILL-01", "work_center_code": "MILLING",
		}})
	})
	router.PUT("/production/machine-centers/:id", func(c *gin.Context) {
		var body erp.MachineCenter
		require.NoError(t, c.ShouldBindJSON(&body))
		body.ID = c.Param("id")
		c.JSON(http.StatusOK, gin.H{"machine_center": body})
	})

	created, err := svc.CreateMachineCenter(context.Background(), &erp.MachineCenter{
		Code: "MILL-01", Name: "Mill 1", WorkCenterCode: "MILLING",
	})
	require.NoError(t, err)
	assert.Equal(t, "mc1", created.ID)

	got, err := svc.GetMachineCenter(context.Background(), "mc1")
	require.NoError(t, err)
	assert.Equal(t, "mc1", got.ID)
	assert.Equal(t, "MILLING", got.WorkCenterCode)

	updated, err := svc.UpdateMachineCenter(context.Background(), "mc1", &erp.MachineCenter{
		Code: "MILL-01", Name: "Mill 1", Capacity: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.Capacity)
}

func TestBOMCreateAndUpdate(t *testing.T) {
	svc, router := newProductionFixture(t)
	router.POST("/production/boms", func(c *gin.Context) {
		var body erp.BOM
		require.NoError(t, c.ShouldBindJSON(&body))
		body.ID = "b1"
		body.Status = "new"
		c.JSON(http.StatusCreated, gin.H{"bom": body})
	})
	router.PUT("/production/boms/:id", func(c *gin.Context) {
		var body erp.BOM
		require.NoError(t, c.ShouldBindJSON(&body))
		body.ID = c.Param("id")
		c.JSON(http.StatusOK, gin.H{"bom": body})
	})

	created, err := svc.CreateBOM(context.Background(), &erp.BOM{
		ItemNo: "CROWN", Lines: []erp.BOMLine{{ItemNo: "CERAMIC", Qty: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", created.ID)
	assert.Equal(t, "new", created.Status)
	require.Len(t, created.Lines, 1)

	updated, err := svc.UpdateBOM(context.Background(), "b1", &erp.BOM{
		ItemNo: "CROWN",
		Lines:  []erp.BOMLine{{ItemNo: "CERAMIC", Qty: 2}, {ItemNo: "ALLOY", Qty: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", updated.ID)
	require.Len(t, updated.Lines, 2)
	assert.Equal(t, "ALLOY", updated.Lines[1].ItemNo)
}

func TestBOMUpdateRejectedWhenCertified(t *testing.T) {
	svc, router := newProductionFixture(t)
	router.PUT("/production/boms/:id", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"message": "certified documents are read-only"})
	})

	_, err := svc.UpdateBOM(context.Background(), "b1", &erp.BOM{ItemNo: "CROWN"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certified documents are read-only")
}

func TestRoutingCreateAndUpdate(t *testing.T) {
	svc, router := newProductionFixture(t)
	router.POST("/production/routings", func(c *gin.Context) {
		var body erp.Routing
		require.NoError(t, c.ShouldBindJSON(&body))
		body.ID = "r1"
		body.Status = "new"
		c.JSON(http.StatusCreated, gin.H{"routing": body})
	})
	router.PUT("/production/routings/:id", func(c *gin.Context) {
		var body erp.Routing
		require.NoError(t, c.ShouldBindJSON(&body))
		body.ID = c.Param("id")
		c.JSON(http.StatusOK, gin.H{"routing": body})
	})

	created, err := svc.CreateRouting(context.Background(), &erp.Routing{
		No: "ROUT-001",
		Operations: []erp.RoutingOperation{
			{OperationNo: "10", WorkCenterCode: "MILLING", RunTime: 30},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", created.ID)
	assert.Equal(t, "new", created.Status)

	updated, err := svc.UpdateRouting(context.Background(), "r1", &erp.Routing{
		No: "ROUT-001",
		Operations: []erp.RoutingOperation{
			{OperationNo: "10", WorkCenterCode: "MILLING", RunTime: 30},
			{OperationNo: "20", WorkCenterCode: "ASSEMBLY", SetupTime: 5, RunTime: 15},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Operations, 2)
	assert.Equal(t, "20", updated.Operations[1].OperationNo)
}
