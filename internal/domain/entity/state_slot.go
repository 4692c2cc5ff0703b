package entity

import "time"

// StateSlot is a named durable slot holding one serialized AppState document
type StateSlot struct {
	Key       string    `gorm:"column:slot_key;type:varchar(255);primaryKey" json:"key"`
	Payload   []byte    `gorm:"type:bytea;not null" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StateSlot) TableName() string {
	return "state_slots"
}
