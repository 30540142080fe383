package boot

import (
	"fairway/src/common"
	"fairway/src/db"
	"fairway/src/lib"
	"fairway/src/models"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.CaddieProfile{},
		&models.InstructorProfile{},
		&models.Service{},
		&models.Booking{},
		&models.Review{},
		&models.VettingSubmission{},
		&models.WebhookEvent{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := lib.CreateCronJob(common.ExpireStalePendingBookings, 10*time.Minute); err != nil {
		log.Printf("Error scheduling stale booking sweep: %s\n", err.Error())
	}
	sched.Start()
	log.Printf("Jobs in queue: %d\n", len(sched.Jobs()))
}
