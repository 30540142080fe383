package main

import (
	"errors"
	"fairway/src/common"
	"fairway/src/db"
	"fairway/src/models"
	"fairway/src/types"
	"fairway/src/utils"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func bookingRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", listBookingsHandler).
		GET("/bookings/:id", getBookingHandler).
		POST("/bookings", createBookingHandler).
		PUT("/bookings/:id/status", updateBookingStatusHandler).
		POST("/checkout/bookings", createBookingCheckoutHandler)
	return g
}

func listBookingsHandler(ctx *gin.Context) {
	userId := ctx.GetUint("id")
	gdb := db.GetDb()
	var bookings []models.Booking
	err := gdb.
		Model(&models.Booking{}).
		Where("player_id = ? OR provider_id = ?", userId, userId).
		Preload("Service").
		Order("created_at DESC").
		Limit(100).
		Find(&bookings).
		Error
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
}

func getBookingHandler(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userId := ctx.GetUint("id")
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.
		Model(&models.Booking{}).
		Where("id = ?", params.ID).
		Preload("Service").
		Preload("Review").
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if booking.PlayerID != userId && booking.ProviderID != userId {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this booking"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": booking})
}

func createBookingHandler(ctx *gin.Context) {
	var body types.CreateBookingRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	playerId := ctx.GetUint("id")
	booking, err := common.CreateBooking(&body, playerId)
	if err != nil {
		if errors.Is(err, common.ErrSelfBooking) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": booking.ID}})
}

func updateBookingStatusHandler(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var body types.UpdateBookingStatusRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userId := ctx.GetUint("id")
	booking, err := common.TransitionBooking(params.ID, userId, types.BookingStatus(body.Status))
	if err != nil {
		var invalid *common.InvalidTransitionError
		switch {
		case errors.Is(err, common.ErrBookingNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, common.ErrNotParticipant), errors.Is(err, common.ErrPlayerTransition):
			ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.As(err, &invalid):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, common.ErrTransitionConflict):
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": booking})
}

func createBookingCheckoutHandler(ctx *gin.Context) {
	var body types.CreateCheckoutRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	playerId := ctx.GetUint("id")
	if playerId == body.ProviderID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": common.ErrSelfBooking.Error()})
		return
	}
	gdb := db.GetDb()
	var service models.Service
	if err := gdb.
		Model(&models.Service{}).
		Where("id = ?", body.ServiceID).
		First(&service).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !service.Available {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "service is not available for booking"})
		return
	}
	if service.ProviderID != body.ProviderID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "service does not belong to this provider"})
		return
	}
	accountId, err := providerPayoutAccount(gdb, body.ProviderID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if accountId == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "This provider does not accept online payments yet. Please contact them directly to book."})
		return
	}
	metadata := map[string]string{
		"request_id":   uuid.NewString(),
		"service_id":   strconv.FormatUint(uint64(service.ID), 10),
		"provider_id":  strconv.FormatUint(uint64(body.ProviderID), 10),
		"player_id":    strconv.FormatUint(uint64(playerId), 10),
		"scheduled_at": body.ScheduledAt,
		"price":        strconv.FormatFloat(service.Price, 'f', 2, 64),
	}
	if body.Notes != nil {
		metadata["notes"] = *body.Notes
	}
	checkoutSession, err := utils.CreateBookingCheckout(&service, *accountId, metadata)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"url": checkoutSession.URL}})
}

// providerPayoutAccount resolves the Stripe account id for whichever profile
// the provider holds. nil means onboarding has not finished.
func providerPayoutAccount(gdb *gorm.DB, providerId uint) (*string, error) {
	var provider models.User
	if err := gdb.
		Model(&models.User{}).
		Where("id = ?", providerId).
		First(&provider).
		Error; err != nil {
		return nil, err
	}
	switch provider.Role {
	case types.ROLE_CADDIE:
		var profile models.CaddieProfile
		if err := gdb.Where("user_id = ?", providerId).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return profile.StripeAccountId, nil
	case types.ROLE_INSTRUCTOR:
		var profile models.InstructorProfile
		if err := gdb.Where("user_id = ?", providerId).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return profile.StripeAccountId, nil
	}
	return nil, nil
}
