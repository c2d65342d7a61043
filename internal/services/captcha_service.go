package services

import (
	"fmt"
	"math/rand"
	"time"
)

// CaptchaService generates the small arithmetic challenge shown on the
// registration form. The answer lives in the session, the question in
// the rendered page.
type CaptchaService struct {
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return &CaptchaService{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateMathProblem returns a display string (e.g. "3 + 5") and the
// integer answer.
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	a := s.rnd.Intn(9) + 1
	b := s.rnd.Intn(9) + 1
	if s.rnd.Intn(2) == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}
