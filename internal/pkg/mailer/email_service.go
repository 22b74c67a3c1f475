// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPaymentFailedNotice(toEmail string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get Frontend URL from ENV or default to a safe placeholder
	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendPaymentFailedNotice(toEmail string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Payment Failed - Action Required")

	// Link to the billing page on the FRONTEND so users can update their card
	billingLink := fmt.Sprintf("%s/settings/billing", s.frontendURL)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>We couldn't process your payment</h2>
			<p>Your latest subscription payment didn't go through. Your account keeps full access for now, but please update your payment method to avoid interruption.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Update Payment Method</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>If you already updated your card, you can ignore this email.</p>
		</div>
	`, billingLink, billingLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send payment notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Payment failed notice sent to %s\n", toEmail)
	return nil
}
