package main

import (
	"errors"
	"fairway/src/db"
	"fairway/src/models"
	"fairway/src/types"
	"fairway/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func providerRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/providers/onboarding", providerOnboardingHandler).
		POST("/providers/payouts/onboarding", providerPayoutOnboardingHandler).
		POST("/checkout/subscriptions", caddieSubscriptionCheckoutHandler).
		POST("/caddies/vetting", submitVettingHandler)
	return g
}

// providerOnboardingHandler promotes a golfer to a provider role and creates
// the matching profile in one transaction. Switching between provider roles
// is not supported.
func providerOnboardingHandler(ctx *gin.Context) {
	var body types.ProviderOnboardingRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ctx.GetString("role") != types.ROLE_GOLFER {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "account is already onboarded as a provider"})
		return
	}
	userId := ctx.GetUint("id")
	gdb := db.GetDb()
	var profileId uint
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.User{}).
			Where("id = ?", userId).
			Update("role", body.Role).
			Error; err != nil {
			return err
		}
		switch body.Role {
		case types.ROLE_CADDIE:
			profile := models.CaddieProfile{
				UserID: userId,
				Bio:    body.Bio,
				Rate:   body.Rate,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			profileId = profile.ID
		case types.ROLE_INSTRUCTOR:
			profile := models.InstructorProfile{
				UserID: userId,
				Bio:    body.Bio,
				Rate:   body.Rate,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			profileId = profile.ID
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "a provider profile already exists for this account"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": profileId, "role": body.Role}})
}

// providerPayoutOnboardingHandler provisions the provider's payout account
// and returns the hosted onboarding link. Calling it again before finishing
// onboarding returns a fresh link for the same account.
func providerPayoutOnboardingHandler(ctx *gin.Context) {
	role := ctx.GetString("role")
	if role != types.ROLE_CADDIE && role != types.ROLE_INSTRUCTOR {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "only providers may onboard for payouts"})
		return
	}
	userId := ctx.GetUint("id")
	gdb := db.GetDb()
	var user models.User
	if err := gdb.Where("id = ?", userId).First(&user).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	acc, link, err := utils.CreateStripeAccount(&user)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var updateErr error
	switch role {
	case types.ROLE_CADDIE:
		updateErr = gdb.
			Model(&models.CaddieProfile{}).
			Where("user_id = ?", userId).
			Update("stripe_account_id", acc.ID).
			Error
	case types.ROLE_INSTRUCTOR:
		updateErr = gdb.
			Model(&models.InstructorProfile{}).
			Where("user_id = ?", userId).
			Update("stripe_account_id", acc.ID).
			Error
	}
	if updateErr != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": updateErr.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"url": link}})
}

// caddieSubscriptionCheckoutHandler opens a subscription-mode checkout for
// the caddie membership. Activation happens only in the webhook handler.
func caddieSubscriptionCheckoutHandler(ctx *gin.Context) {
	if ctx.GetString("role") != types.ROLE_CADDIE {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "only caddies may subscribe"})
		return
	}
	userId := ctx.GetUint("id")
	gdb := db.GetDb()
	var profile models.CaddieProfile
	if err := gdb.Where("user_id = ?", userId).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "caddie profile not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if profile.SubscriptionStatus == types.SUBSCRIPTION_ACTIVE {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "subscription is already active"})
		return
	}
	checkoutSession, err := utils.CreateSubscriptionCheckout(&profile, ctx.GetString("email"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"url": checkoutSession.URL}})
}

func submitVettingHandler(ctx *gin.Context) {
	if ctx.GetString("role") != types.ROLE_CADDIE {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "only caddies may submit a vetting application"})
		return
	}
	var body types.VettingRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userId := ctx.GetUint("id")
	gdb := db.GetDb()
	var profile models.CaddieProfile
	if err := gdb.Where("user_id = ?", userId).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "caddie profile not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	submission := models.VettingSubmission{
		CaddieID:         profile.ID,
		ExperienceAnswer: body.ExperienceAnswer,
		EtiquetteAnswer:  body.EtiquetteAnswer,
		CourseAnswer:     body.CourseAnswer,
		Status:           types.VETTING_PENDING,
	}
	if err := gdb.Create(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "a vetting application has already been submitted"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": submission.ID, "status": submission.Status}})
}
