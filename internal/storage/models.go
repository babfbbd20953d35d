package storage

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Numeric is a decimal column. SQLite gives NUMERIC columns REAL affinity,
// which keeps only 15 significant digits, so there the value is stored as
// its exact text form instead.
type Numeric struct {
	decimal.Decimal
}

// NewNumeric wraps d for storage.
func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{Decimal: d}
}

func (Numeric) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return "numeric"
}

// ChargeRecord is one computed charge kept for auditing. It captures the
// inputs that decided the tier so the charge can be re-derived later.
type ChargeRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;column:id"`
	BilledOn      time.Time `json:"billedOn" gorm:"column:billed_on;not null"`
	Tier          string    `json:"tier" gorm:"column:tier;not null"`
	Quantity      Numeric   `json:"quantity" gorm:"column:quantity;not null"`
	Rate          Numeric   `json:"rate" gorm:"column:rate;not null"`
	ServiceCharge Numeric   `json:"serviceCharge" gorm:"column:service_charge;not null"`
	Amount        Numeric   `json:"amount" gorm:"column:amount;not null"`
	SummerStart   time.Time `json:"summerStart" gorm:"column:summer_start;not null"`
	SummerEnd     time.Time `json:"summerEnd" gorm:"column:summer_end;not null"`
	CreatedAt     time.Time `json:"createdAt" gorm:"column:created_at;not null;index"`
}

func (ChargeRecord) TableName() string { return "charge_records" }
