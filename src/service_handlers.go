package main

import (
	"context"
	"encoding/json"
	"errors"
	"fairway/src/db"
	"fairway/src/lib"
	"fairway/src/models"
	"fairway/src/models/scopes"
	"fairway/src/types"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func serviceRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/services", createServiceHandler).
		GET("/providers/services", listOwnServicesHandler).
		PUT("/services/:id/availability", updateServiceAvailabilityHandler)
	return g
}

func discoveryRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.GET("/services", listServicesHandler)
	apiv1.GET("/caddies", listCaddiesHandler)
	return apiv1
}

func createServiceHandler(ctx *gin.Context) {
	role := ctx.GetString("role")
	if role != types.ROLE_CADDIE && role != types.ROLE_INSTRUCTOR {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "only providers may create services"})
		return
	}
	var body types.CreateServiceRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	service := models.Service{
		Title:        body.Title,
		Slug:         slug.Make(body.Title),
		Description:  body.Description,
		Price:        body.Price,
		DurationMins: body.DurationMins,
		Available:    true,
		ProviderID:   ctx.GetUint("id"),
	}
	gdb := db.GetDb()
	if err := gdb.Create(&service).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": service.ID, "slug": service.Slug}})
}

func listOwnServicesHandler(ctx *gin.Context) {
	gdb := db.GetDb()
	var services []models.Service
	if err := gdb.
		Model(&models.Service{}).
		Scopes(scopes.WithProvider(ctx.GetUint("id"))).
		Order("created_at DESC").
		Find(&services).
		Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": services, "count": len(services)})
}

func updateServiceAvailabilityHandler(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var body types.UpdateServiceAvailabilityRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gdb := db.GetDb()
	res := gdb.
		Model(&models.Service{}).
		Where("id = ? AND provider_id = ?", params.ID, ctx.GetUint("id")).
		Update("available", *body.Available)
	if res.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// listServicesHandler is public discovery. Caddie services only surface
// while the caddie is verified and holds an active subscription.
func listServicesHandler(ctx *gin.Context) {
	gdb := db.GetDb()
	var services []models.Service
	if err := gdb.
		Model(&models.Service{}).
		Where("available = ?", true).
		Preload("Provider").
		Order("created_at DESC").
		Limit(100).
		Find(&services).
		Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	eligible, err := filterDiscoverableServices(gdb, services)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": eligible, "count": len(eligible)})
}

func filterDiscoverableServices(gdb *gorm.DB, services []models.Service) ([]models.Service, error) {
	caddieIds := []uint{}
	instructorIds := []uint{}
	for _, s := range services {
		if s.Provider == nil {
			continue
		}
		switch s.Provider.Role {
		case types.ROLE_CADDIE:
			caddieIds = append(caddieIds, s.ProviderID)
		case types.ROLE_INSTRUCTOR:
			instructorIds = append(instructorIds, s.ProviderID)
		}
	}
	discoverable := map[uint]bool{}
	if len(caddieIds) > 0 {
		var profiles []models.CaddieProfile
		if err := gdb.
			Where("user_id IN (?) AND verified = ? AND subscription_status = ?", caddieIds, true, types.SUBSCRIPTION_ACTIVE).
			Find(&profiles).
			Error; err != nil {
			return nil, err
		}
		for _, p := range profiles {
			discoverable[p.UserID] = true
		}
	}
	if len(instructorIds) > 0 {
		var profiles []models.InstructorProfile
		if err := gdb.
			Where("user_id IN (?) AND verified = ?", instructorIds, true).
			Find(&profiles).
			Error; err != nil {
			return nil, err
		}
		for _, p := range profiles {
			discoverable[p.UserID] = true
		}
	}
	eligible := make([]models.Service, 0, len(services))
	for _, s := range services {
		if discoverable[s.ProviderID] {
			eligible = append(eligible, s)
		}
	}
	return eligible, nil
}

func listCaddiesHandler(ctx *gin.Context) {
	cacheKey := "caddies:discoverable"
	rdb := lib.GetRedisClient()
	if rdb != nil {
		if cached, err := rdb.Get(context.Background(), cacheKey).Result(); err == nil {
			ctx.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}
	gdb := db.GetDb()
	var caddies []models.CaddieProfile
	if err := gdb.
		Model(&models.CaddieProfile{}).
		Where("verified = ? AND subscription_status = ?", true, types.SUBSCRIPTION_ACTIVE).
		Preload("User").
		Limit(100).
		Find(&caddies).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusOK, gin.H{"data": []models.CaddieProfile{}, "count": 0})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	payload, err := json.Marshal(gin.H{"data": caddies, "count": len(caddies)})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rdb != nil {
		rdb.Set(context.Background(), cacheKey, payload, time.Minute)
	}
	ctx.Data(http.StatusOK, "application/json", payload)
}
