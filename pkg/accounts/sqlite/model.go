package sqlite

import "time"

// accountModel is the GORM-managed row backing one accounts.Account.
// Mapped to/from the domain type in sqlite.go so pkg/accounts never depends
// on GORM.
type accountModel struct {
	Login        string `gorm:"primaryKey;column:login"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Nickname     string `gorm:"column:nickname;not null;default:''"`
	Access       uint64 `gorm:"column:access;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (accountModel) TableName() string { return "accounts" }
