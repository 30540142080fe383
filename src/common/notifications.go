package common

import (
	"fairway/src/db"
	"fairway/src/lib"
	"fairway/src/lib/mailer"
	"fairway/src/models"
	"fairway/src/utils"
	"fmt"
	"log"
)

type bookingParties struct {
	PlayerName    string
	PlayerEmail   string
	ProviderName  string
	ProviderEmail string
	ServiceTitle  string
}

// loadBookingParties gathers names for notification bodies. Rows that fail
// to load degrade to placeholder text instead of failing the notification.
func loadBookingParties(b *models.Booking) *bookingParties {
	parties := &bookingParties{
		PlayerName:   "Golfer",
		ProviderName: "Provider",
		ServiceTitle: "Service",
	}
	gdb := db.GetDb()
	var player models.User
	if err := gdb.Where("id = ?", b.PlayerID).First(&player).Error; err != nil {
		log.Printf("Could not load player %d for notification: %s\n", b.PlayerID, err.Error())
	} else {
		parties.PlayerName = player.Name
		parties.PlayerEmail = player.Email
	}
	var provider models.User
	if err := gdb.Where("id = ?", b.ProviderID).First(&provider).Error; err != nil {
		log.Printf("Could not load provider %d for notification: %s\n", b.ProviderID, err.Error())
	} else {
		parties.ProviderName = provider.Name
		parties.ProviderEmail = provider.Email
	}
	var service models.Service
	if err := gdb.Where("id = ?", b.ServiceID).First(&service).Error; err != nil {
		log.Printf("Could not load service %d for notification: %s\n", b.ServiceID, err.Error())
	} else {
		parties.ServiceTitle = service.Title
	}
	return parties
}

func NotifyBookingConfirmed(b *models.Booking) {
	if !mailer.Enabled() {
		return
	}
	p := loadBookingParties(b)
	if p.PlayerEmail == "" {
		return
	}
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s confirmed your booking for <strong>%s</strong> on %s.</p><p>Total: %s</p>",
		p.PlayerName, p.ProviderName, p.ServiceTitle, utils.FormatSchedule(b.ScheduledAt), utils.FormatPrice(b.TotalPrice),
	)
	mailer.SendAsync(&lib.SendMailInput{
		To:      []string{p.PlayerEmail},
		Subject: "Your booking is confirmed",
		Body:    body,
		Html:    true,
	})
}

func NotifyBookingRequested(b *models.Booking) {
	if !mailer.Enabled() {
		return
	}
	p := loadBookingParties(b)
	if p.ProviderEmail == "" {
		return
	}
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s requested <strong>%s</strong> on %s.</p><p>Total: %s</p><p>Confirm or decline from your dashboard.</p>",
		p.ProviderName, p.PlayerName, p.ServiceTitle, utils.FormatSchedule(b.ScheduledAt), utils.FormatPrice(b.TotalPrice),
	)
	mailer.SendAsync(&lib.SendMailInput{
		To:      []string{p.ProviderEmail},
		Subject: "New booking request",
		Body:    body,
		Html:    true,
	})
}

// NotifyBookingPaid goes to both sides after a paid checkout settles.
func NotifyBookingPaid(b *models.Booking) {
	if !mailer.Enabled() {
		return
	}
	p := loadBookingParties(b)
	schedule := utils.FormatSchedule(b.ScheduledAt)
	price := utils.FormatPrice(b.TotalPrice)
	if p.ProviderEmail != "" {
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>%s paid for <strong>%s</strong> on %s.</p><p>Total: %s</p>",
			p.ProviderName, p.PlayerName, p.ServiceTitle, schedule, price,
		)
		mailer.SendAsync(&lib.SendMailInput{
			To:      []string{p.ProviderEmail},
			Subject: "New paid booking",
			Body:    body,
			Html:    true,
		})
	}
	if p.PlayerEmail != "" {
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>Your payment for <strong>%s</strong> with %s on %s went through.</p><p>Total: %s</p>",
			p.PlayerName, p.ServiceTitle, p.ProviderName, schedule, price,
		)
		mailer.SendAsync(&lib.SendMailInput{
			To:      []string{p.PlayerEmail},
			Subject: "Booking payment received",
			Body:    body,
			Html:    true,
		})
	}
}
