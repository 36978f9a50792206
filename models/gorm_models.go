// models/gorm_models.go
package models

import (
	"time"

	"github.com/wfunc/drawparty/topic"
)

// GormTopic 题库表 topics 的一行
type GormTopic struct {
	ID        uint     `gorm:"primaryKey"`
	Main      string   `gorm:"uniqueIndex;not null"`
	Aliases   []string `gorm:"type:jsonb;serializer:json"`
	Enabled   bool     `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (GormTopic) TableName() string {
	return "topics"
}

func (t GormTopic) Entry() topic.Entry {
	return topic.Entry{Main: t.Main, Aliases: append([]string(nil), t.Aliases...)}
}

func NewGormTopic(e topic.Entry) GormTopic {
	return GormTopic{Main: e.Main, Aliases: append([]string(nil), e.Aliases...), Enabled: true}
}
