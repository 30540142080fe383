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

func authRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/auth/token", issueTokenHandler)
	return apiv1
}

// issueTokenHandler exchanges a known email for a signed bearer token.
// Identity itself is established upstream; this only mints API credentials
// for accounts that already exist.
func issueTokenHandler(ctx *gin.Context) {
	var body types.AuthTokenRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gdb := db.GetDb()
	var user models.User
	if err := gdb.
		Model(&models.User{}).
		Where("email = ?", body.Email).
		First(&user).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	token, err := utils.GenerateToken(&user)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token}})
}
