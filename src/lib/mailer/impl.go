package mailer

import (
	"fairway/src/lib"
	"log"
	"os"
)

// Enabled reports whether outbound email is configured. Missing SMTP
// configuration silently disables sending.
func Enabled() bool {
	return os.Getenv("SMTP_HOST") != ""
}

func Send(input *lib.SendMailInput) error {
	if !Enabled() {
		return nil
	}
	if input.From == "" {
		input.From = os.Getenv("MAIL_FROM")
		input.FromName = os.Getenv("MAIL_FROM_NAME")
	}
	return lib.SendMail(input)
}

// SendAsync dispatches a notification without blocking the caller. Delivery
// failures are logged and discarded, never retried, never surfaced.
func SendAsync(input *lib.SendMailInput) {
	if !Enabled() {
		return
	}
	go func() {
		if err := Send(input); err != nil {
			log.Printf("Error sending email to %v: %s\n", input.To, err.Error())
		}
	}()
}
