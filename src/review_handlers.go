package main

import (
	"errors"
	"fairway/src/db"
	"fairway/src/models"
	"fairway/src/models/scopes"
	"fairway/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func reviewRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/:id/reviews", createReviewHandler).
		GET("/providers/:id/reviews", listProviderReviewsHandler)
	return g
}

// createReviewHandler enforces the one-review-per-completed-booking rule.
// Reviews are immutable: there is no update or delete route.
func createReviewHandler(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var body types.CreateReviewRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userId := ctx.GetUint("id")
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.
		Model(&models.Booking{}).
		Where("id = ?", params.ID).
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if booking.PlayerID != userId {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "only the booking's player may leave a review"})
		return
	}
	if booking.Status != types.BOOKING_COMPLETED {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "booking must be completed before it can be reviewed"})
		return
	}
	var count int64
	if err := gdb.
		Model(&models.Review{}).
		Where("booking_id = ?", booking.ID).
		Count(&count).
		Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if count > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "a review already exists for this booking", "redirect": "/bookings"})
		return
	}
	review := models.Review{
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		ReviewerID: userId,
		Rating:     body.Rating,
		Comment:    body.Comment,
	}
	if err := gdb.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "a review already exists for this booking", "redirect": "/bookings"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": review.ID}})
}

func listProviderReviewsHandler(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gdb := db.GetDb()
	var reviews []models.Review
	if err := gdb.
		Model(&models.Review{}).
		Scopes(scopes.WithProvider(params.ID)).
		Preload("Reviewer").
		Order("created_at DESC").
		Limit(100).
		Find(&reviews).
		Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": reviews, "count": len(reviews)})
}
