package database

import (
	"time"

	"github.com/amrlab/amrserver/internal/surveillance"
)

// ObservationRecord is the stored form of a surveillance observation
type ObservationRecord struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement;column:id"`
	Pathogen             string    `gorm:"column:pathogen;not null;index:idx_combination"`
	Antimicrobial        string    `gorm:"column:antimicrobial;not null;index:idx_combination"`
	Region               string    `gorm:"column:region;index"`
	Period               int       `gorm:"column:period;not null"`
	ResistancePercentage float64   `gorm:"column:resistance_percentage;not null"`
	SampleSize           int       `gorm:"column:sample_size;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name for ObservationRecord
func (ObservationRecord) TableName() string {
	return "observations"
}

// Observation converts the stored record back to its domain form
func (r ObservationRecord) Observation() surveillance.Observation {
	return surveillance.Observation{
		Pathogen:             r.Pathogen,
		Antimicrobial:        r.Antimicrobial,
		Region:               r.Region,
		Period:               r.Period,
		ResistancePercentage: r.ResistancePercentage,
		SampleSize:           r.SampleSize,
	}
}

// newRecord builds a stored record from a domain observation
func newRecord(o surveillance.Observation) ObservationRecord {
	return ObservationRecord{
		Pathogen:             o.Pathogen,
		Antimicrobial:        o.Antimicrobial,
		Region:               o.Region,
		Period:               o.Period,
		ResistancePercentage: o.ResistancePercentage,
		SampleSize:           o.SampleSize,
	}
}
