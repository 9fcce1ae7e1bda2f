package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dataset identifies one of the two reconciled name datasets.
type Dataset string

const (
	DatasetForenames Dataset = "forenames"
	DatasetSurnames  Dataset = "surnames"
)

func (d Dataset) String() string { return string(d) }

// IsValid checks if the Dataset value is valid.
func (d Dataset) IsValid() bool {
	switch d {
	case DatasetForenames, DatasetSurnames:
		return true
	}
	return false
}

// UnknownRegion is used when a region block carries no usable region label.
const UnknownRegion = "Unknown"

// Forename is one ranked given name of a country's catalog.
type Forename struct {
	ID        uuid.UUID
	Country   string
	Region    string
	Gender    string
	Rank      int
	Name      string
	CreatedAt time.Time
}

// Surname is one ranked family name of a country's catalog.
type Surname struct {
	ID        uuid.UUID
	Country   string
	Rank      int
	Count     int
	Name      string
	CreatedAt time.Time
}
