package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the state of a payment record.
type PaymentStatus string

const (
	// PaymentCompleted is the only state the simulated gateway produces:
	// payments capture immediately or fail before a row is written.
	PaymentCompleted PaymentStatus = "completed"
)

// Payment records a client paying the assigned freelancer for a completed
// project. At most one payment exists per project.
type Payment struct {
	ID        uuid.UUID     `json:"id"`
	ProjectID uuid.UUID     `json:"project_id"`
	PayerID   uuid.UUID     `json:"payer_id"`
	PayeeID   uuid.UUID     `json:"payee_id"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
