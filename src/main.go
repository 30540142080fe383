package main

import (
	"fairway/src/boot"
	"fairway/src/config"
	"fairway/src/middlewares"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

var bookableDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	return time.Now().Before(datetime)
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
	}
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	return g.Group(apiPrefix)
}

func setupRouter() *gin.Engine {
	r := gin.Default()
	if appHost := os.Getenv("APP_HOST"); appHost == "" {
		r.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowOrigins = []string{appHost}
		cc.AllowMethods = append(cc.AllowMethods, "PUT", "DELETE")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowCredentials = true
		cc.MaxAge = 12 * time.Hour
		r.Use(cors.New(cc))
	}
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	stripeWebhookRoute(r)
	authRoutes(r)
	discoveryRoutes(r)

	apiv1 := apiv1Group(r)
	authed := apiv1.Group("")
	authed.Use(middlewares.AuthMiddleware)
	bookingRoutes(authed)
	serviceRoutes(authed)
	reviewRoutes(authed)
	providerRoutes(authed)
	transcriptionRoutes(authed)
	adminRoutes(authed)
	return r
}

func main() {
	registerValidators()
	boot.InitDb()
	boot.InitScheduler()

	r := setupRouter()
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
