// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 用户角色常量。
const (
	RoleStandard = "USER"
	RoleAdmin    = "ADMIN"
	RoleMiniApp  = "MINIAPP"
)

// User 代表一个账号：注册的 Web 用户，或由可信客户端
// （provider + external id）绑定产生的外部身份。
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Password   string    `gorm:"type:varchar(255)" json:"-"`
	Role       string    `gorm:"type:varchar(16);not null" json:"role"`
	Provider   string    `gorm:"type:varchar(32);index:idx_users_external" json:"provider,omitempty"`
	ExternalID string    `gorm:"type:varchar(64);index:idx_users_external" json:"externalId,omitempty"`
	FirstName  string    `gorm:"type:varchar(64)" json:"firstName,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
