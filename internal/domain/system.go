package domain

import (
	"time"
)

type SysOpr struct {
	ID        int64     `json:"id,string" form:"id"`
	Realname  string    `json:"realname" form:"realname"`
	Mobile    string    `json:"mobile" form:"mobile"`
	Email     string    `json:"email" form:"email"`
	Username  string    `json:"username" form:"username"`
	Level     string    `json:"level" form:"level"`
	Status    string    `json:"status" form:"status"`
	Remark    string    `json:"remark" form:"remark"`
	LastLogin time.Time `json:"last_login" form:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysOpr) TableName() string {
	return "sys_opr"
}

// SysApiKey binds an operator account to an API key used on the relay
// surface. Status must be "enabled" for the key to authorize requests.
type SysApiKey struct {
	ID        int64     `json:"id,string" form:"id"`
	OprId     int64     `json:"opr_id,string" gorm:"index" form:"opr_id"`
	Name      string    `json:"name" form:"name"`
	ApiKey    string    `json:"api_key" gorm:"uniqueIndex;size:128" form:"api_key"`
	Status    string    `json:"status" form:"status"`
	Remark    string    `json:"remark" form:"remark"`
	LastUsed  time.Time `json:"last_used"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysApiKey) TableName() string {
	return "sys_api_key"
}
