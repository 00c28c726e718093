package schedule

import (
	"time"

	"gorm.io/gorm"
)

// Instructor is a user able to own instructables.
type Instructor struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;index"`
	CreatedAt time.Time
}

// Instructable is a bookable class owned by an instructor.
type Instructable struct {
	ID              uint       `gorm:"primaryKey"`
	UserID          uint       `gorm:"not null;index"`
	Instructor      Instructor `gorm:"foreignKey:UserID"`
	Name            string     `gorm:"size:255;not null"`
	DescriptionBook string     `gorm:"type:text"`
	DescriptionWeb  string     `gorm:"type:text"`
	Topic           string     `gorm:"size:100"`
	Culture         string     `gorm:"size:100"`
	Duration        float64    // hours
	RepeatCount     int        `gorm:"not null;default:1"`
	Instances       []Instance
	CreatedAt       time.Time
}

// Instance is one scheduled occurrence of an instructable.
type Instance struct {
	ID             uint         `gorm:"primaryKey"`
	InstructableID uint         `gorm:"not null;index"`
	Instructable   Instructable `gorm:"foreignKey:InstructableID"`
	StartTime      time.Time    `gorm:"not null;index"`
	Location       string       `gorm:"size:255"`
}

// BeforeSave keeps start times in UTC so range queries compare cleanly on
// every dialect.
func (i *Instance) BeforeSave(tx *gorm.DB) error {
	i.StartTime = i.StartTime.UTC()
	return nil
}

// Occurrence is the flattened read model handed to renderers.
type Occurrence struct {
	InstanceID      uint
	InstructableID  uint
	Name            string
	DescriptionBook string
	DescriptionWeb  string
	Topic           string
	Culture         string
	Instructor      string
	Location        string
	RepeatCount     int
	Start           time.Time
	End             time.Time
}

const defaultDuration = time.Hour

func occurrenceFrom(inst Instance) Occurrence {
	duration := defaultDuration
	if inst.Instructable.Duration > 0 {
		duration = time.Duration(inst.Instructable.Duration * float64(time.Hour))
	}
	return Occurrence{
		InstanceID:      inst.ID,
		InstructableID:  inst.InstructableID,
		Name:            inst.Instructable.Name,
		DescriptionBook: inst.Instructable.DescriptionBook,
		DescriptionWeb:  inst.Instructable.DescriptionWeb,
		Topic:           inst.Instructable.Topic,
		Culture:         inst.Instructable.Culture,
		Instructor:      inst.Instructable.Instructor.Name,
		Location:        inst.Location,
		RepeatCount:     inst.Instructable.RepeatCount,
		Start:           inst.StartTime,
		End:             inst.StartTime.Add(duration),
	}
}
