package holiday

import (
	"time"
)

type Holiday struct {
	ID        string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex" json:"date"`
	Name      string    `gorm:"column:name;size:200" json:"name"`
	IsActive  bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Holiday) TableName() string { return "holidays" }
