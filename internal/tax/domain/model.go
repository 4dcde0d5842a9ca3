package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Config is the tax configuration applied to one payout calculation.
// It is supplied fresh per calculation; the calculator holds no copy.
type Config struct {
	PlatformFeePercent float64 `json:"platform_fee_percent"`
	GSTPercent         float64 `json:"gst_percent"`
	TDSPercent         float64 `json:"tds_percent"`
}

// Default mirrors the rates the platform launched with.
func Default() Config {
	return Config{
		PlatformFeePercent: 10,
		GSTPercent:         18,
		TDSPercent:         5,
	}
}

func (c Config) Validate() error {
	for _, pct := range []float64{c.PlatformFeePercent, c.GSTPercent, c.TDSPercent} {
		if pct < 0 || pct > 100 {
			return ErrInvalidTaxConfig
		}
	}
	return nil
}

// Setting is the persisted, admin-editable tax configuration.
type Setting struct {
	ID snowflake.ID `gorm:"primaryKey"`

	PlatformFeePercent float64 `gorm:"not null"`
	GSTPercent         float64 `gorm:"column:gst_percent;not null"`
	TDSPercent         float64 `gorm:"column:tds_percent;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Setting) TableName() string { return "tax_settings" }

func (s Setting) Config() Config {
	return Config{
		PlatformFeePercent: s.PlatformFeePercent,
		GSTPercent:         s.GSTPercent,
		TDSPercent:         s.TDSPercent,
	}
}
