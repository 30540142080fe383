package main

import (
	"errors"
	"fairway/src/db"
	"fairway/src/middlewares"
	"fairway/src/models"
	"fairway/src/models/scopes"
	"fairway/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func adminRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("/admin")
	admin.Use(middlewares.RoleMiddleware(types.ROLE_ADMIN))
	admin.
		GET("/bookings", adminListBookingsHandler).
		GET("/users", adminListUsersHandler).
		GET("/vetting", adminListVettingHandler).
		PUT("/vetting/:id", adminReviewVettingHandler)
	return admin
}

func adminListBookingsHandler(ctx *gin.Context) {
	gdb := db.GetDb()
	var bookings []models.Booking
	query := gdb.Model(&models.Booking{})
	if status := ctx.Query("status"); status != "" {
		query = query.Scopes(scopes.WithStatus(status))
	}
	if err := query.
		Preload("Service").
		Preload("Player").
		Preload("Provider").
		Order("created_at DESC").
		Limit(200).
		Find(&bookings).
		Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
}

func adminListUsersHandler(ctx *gin.Context) {
	gdb := db.GetDb()
	var users []models.User
	query := gdb.Model(&models.User{})
	if role := ctx.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.
		Order("created_at DESC").
		Limit(200).
		Find(&users).
		Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": users, "count": len(users)})
}

func adminListVettingHandler(ctx *gin.Context) {
	gdb := db.GetDb()
	var submissions []models.VettingSubmission
	query := gdb.Model(&models.VettingSubmission{})
	if status := ctx.Query("status"); status != "" {
		query = query.Scopes(scopes.WithStatus(status))
	} else {
		query = query.Scopes(scopes.WithStatus(string(types.VETTING_PENDING)))
	}
	if err := query.
		Preload("Caddie.User").
		Order("created_at ASC").
		Find(&submissions).
		Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": submissions, "count": len(submissions)})
}

// adminReviewVettingHandler settles a pending application. Approval also
// flips the caddie profile to verified so the decision and its effect land
// in the same transaction.
func adminReviewVettingHandler(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var body types.ReviewVettingRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gdb := db.GetDb()
	var submission models.VettingSubmission
	if err := gdb.Where("id = ?", params.ID).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "vetting submission not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if submission.Status != types.VETTING_PENDING {
		ctx.JSON(http.StatusConflict, gin.H{"error": "vetting submission has already been reviewed"})
		return
	}
	err := gdb.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.VettingSubmission{}).
			Where("id = ? AND status = ?", submission.ID, types.VETTING_PENDING).
			Update("status", body.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if types.VettingStatus(body.Status) == types.VETTING_APPROVED {
			if err := tx.
				Model(&models.CaddieProfile{}).
				Where("id = ?", submission.CaddieID).
				Update("verified", true).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "vetting submission has already been reviewed"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"id": submission.ID, "status": body.Status}})
}
