// internal/service/sweeper.go
package service

import (
	"log"
	"time"

	"github.com/teamalpha/slackconnect-backend/internal/repository"
)

const DefaultRetentionDays = 30

// Sweeper purges terminal messages older than the retention window. A
// failed sweep is logged and simply retried on the next schedule; it is
// never fatal to dispatching.
type Sweeper struct {
	MessageRepo   repository.MessageRepositoryInterface
	RetentionDays int
}

func NewSweeper(messageRepo repository.MessageRepositoryInterface, retentionDays int) *Sweeper {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Sweeper{MessageRepo: messageRepo, RetentionDays: retentionDays}
}

func (s *Sweeper) Sweep() {
	cutoff := time.Now().AddDate(0, 0, -s.RetentionDays).Unix()
	n, err := s.MessageRepo.PurgeTerminalBefore(cutoff)
	if err != nil {
		log.Println("⚠️ Retention sweep failed:", err)
		return
	}
	if n > 0 {
		log.Printf("🧹 Retention sweep removed %d message(s)", n)
	}
}
