package donation

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type TransactionStatus string

const (
	TxnCreated    TransactionStatus = "created"
	TxnAuthorized TransactionStatus = "authorized"
	TxnCaptured   TransactionStatus = "captured"
	TxnSucceeded  TransactionStatus = "succeeded"
	TxnFailed     TransactionStatus = "failed"
	TxnRefunded   TransactionStatus = "refunded"
	TxnPending    TransactionStatus = "pending"
)

// MinimumAmount is the smallest accepted donation.
const MinimumAmount = 10

// Donation is a single pledge against a campaign. donor_name and donor_email
// are a snapshot of the donor at donation time and never rewritten. Donations
// are never deleted; refunded is a terminal state reached by an external
// refund process.
type Donation struct {
	ID            string         `gorm:"column:id;primaryKey" json:"id"`
	CampaignID    string         `gorm:"column:campaign_id;index;not null" json:"campaign"`
	DonorID       string         `gorm:"column:donor_id;index" json:"donor,omitempty"`
	Amount        float64        `gorm:"column:amount;not null" json:"amount"`
	DonorName     string         `gorm:"column:donor_name;not null" json:"donorName"`
	DonorEmail    string         `gorm:"column:donor_email;not null" json:"donorEmail"`
	Message       string         `gorm:"column:message" json:"message,omitempty"`
	IsAnonymous   bool           `gorm:"column:is_anonymous;default:false" json:"isAnonymous"`
	Status        Status         `gorm:"column:status;default:'pending';index" json:"status"`
	TransactionID string         `gorm:"column:transaction_id" json:"transactionId,omitempty"`
	ReceiptNumber *string        `gorm:"column:receipt_number;uniqueIndex" json:"receiptNumber,omitempty"`
	Metadata      datatypes.JSON `gorm:"column:metadata" json:"-"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// Transaction is the payment-capture record for a donation. donation_id may
// be empty until the donation exists (capture-then-record ordering) and is
// backfilled afterwards.
type Transaction struct {
	ID              string            `gorm:"column:id;primaryKey" json:"id"`
	Code            string            `gorm:"column:code;uniqueIndex;not null" json:"code"`
	DonationID      string            `gorm:"column:donation_id;index" json:"donation,omitempty"`
	PaymentProvider string            `gorm:"column:payment_provider;default:'mock_gateway'" json:"paymentProvider"`
	ProviderTxnID   *string           `gorm:"column:provider_txn_id;uniqueIndex" json:"transactionId,omitempty"`
	Amount          float64           `gorm:"column:amount;not null" json:"amount"`
	Currency        string            `gorm:"column:currency;default:'INR'" json:"currency"`
	Status          TransactionStatus `gorm:"column:status;default:'pending'" json:"status"`
	Metadata        datatypes.JSON    `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// Receipt is append-only; one per completed donation.
type Receipt struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	DonationID    string    `gorm:"column:donation_id;index;not null" json:"donation"`
	ReceiptNumber string    `gorm:"column:receipt_number;uniqueIndex;not null" json:"receiptNumber"`
	Amount        float64   `gorm:"column:amount;not null" json:"amount"`
	IssuedTo      string    `gorm:"column:issued_to" json:"issuedTo"`
	DateIssued    time.Time `gorm:"column:date_issued;autoCreateTime" json:"dateIssued"`
}
