package domain

import (
	"time"

	"github.com/chernandez90/InsurancePortal/pkg/database"
)

// ClaimModel is the GORM model for the claims table. Seq orders claims by
// insertion; ClaimID is the public identifier.
type ClaimModel struct {
	Seq             uint      `gorm:"primaryKey;autoIncrement"`
	ClaimID         string    `gorm:"column:claim_id;type:varchar(64);uniqueIndex;not null"`
	PolicyReference string    `gorm:"type:text;not null"`
	Description     string    `gorm:"type:text;not null"`
	FilingDate      time.Time `gorm:"not null"`
	UserID          string    `gorm:"type:varchar(36);index;not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ClaimModel.
func (ClaimModel) TableName() string {
	return "claims"
}

// ToDomain converts ClaimModel to domain Claim.
func (m *ClaimModel) ToDomain() *Claim {
	return &Claim{
		ID:              m.ClaimID,
		PolicyReference: m.PolicyReference,
		Description:     m.Description,
		FilingDate:      m.FilingDate,
		UserID:          m.UserID,
		CreatedAt:       m.CreatedAt,
	}
}

// ClaimToModel converts domain Claim to ClaimModel.
func ClaimToModel(c *Claim) *ClaimModel {
	return &ClaimModel{
		ClaimID:         c.ID,
		PolicyReference: c.PolicyReference,
		Description:     c.Description,
		FilingDate:      c.FilingDate,
		UserID:          c.UserID,
		CreatedAt:       c.CreatedAt,
	}
}

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string               `gorm:"type:varchar(36);primaryKey"`
	Email        string               `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string               `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string               `gorm:"type:varchar(255);not null"`
	Roles        database.StringArray `gorm:"type:text"`
	CreatedAt    time.Time            `gorm:"autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Roles:        []string(m.Roles),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Roles:        database.StringArray(u.Roles),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Models lists every model for auto-migration.
func Models() []any {
	return []any{&ClaimModel{}, &UserModel{}}
}
