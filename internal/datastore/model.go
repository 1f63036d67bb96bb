package datastore

import (
	"time"

	"github.com/trailtracker/trailtracker/internal/analytics"
)

// DefaultProfilePictureURL is assigned to newly registered users.
const DefaultProfilePictureURL = "/static/default_profile.png"

// Location is the last position a user saved. Both fields are nil until the first save.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// User is an account together with its pins and uploads.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	Username          string    `gorm:"size:191;uniqueIndex;not null" json:"username"`
	PasswordHash      string    `gorm:"size:255;not null" json:"-"`
	Name              string    `gorm:"size:255" json:"name"`
	Email             string    `gorm:"size:255" json:"email"`
	ProfilePictureURL string    `gorm:"size:512" json:"profile_picture_url"`
	Location          Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Pins              []Pin     `gorm:"constraint:OnDelete:CASCADE" json:"gps_pins"`
	Uploads           []Upload  `gorm:"constraint:OnDelete:CASCADE" json:"uploads"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"-"`
}

// Pin is a saved camera location. Pins are returned in insertion order.
type Pin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"size:255" json:"name"`
	CameraID  string    `gorm:"size:191;index" json:"camera_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"-"`
}

// Upload is the metadata of one trail-camera capture. FilePath is unique per user.
type Upload struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_uploads_user_filepath;not null" json:"-"`
	FilePath   string    `gorm:"size:512;uniqueIndex:idx_uploads_user_filepath;not null" json:"filepath"`
	CameraID   string    `gorm:"size:191;index" json:"camera_id"`
	Animal     string    `gorm:"size:191;index" json:"animal"`
	PulledData string    `gorm:"type:text" json:"pulled_data"`
	Date       string    `gorm:"size:32" json:"date"`
	Time       string    `gorm:"size:32" json:"time"`
	CreatedAt  time.Time `json:"-"`
}

// Snapshot is one user's pins and uploads read inside a single transaction.
type Snapshot struct {
	User    User
	Pins    []analytics.PinRecord
	Uploads []analytics.UploadRecord
}

// Record converts the pin for the analytics package.
func (p *Pin) Record() analytics.PinRecord {
	return analytics.PinRecord{
		Name:      p.Name,
		CameraID:  p.CameraID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}

// Record converts the upload for the analytics package.
func (u *Upload) Record() analytics.UploadRecord {
	return analytics.UploadRecord{
		FilePath:   u.FilePath,
		CameraID:   u.CameraID,
		Animal:     u.Animal,
		PulledData: u.PulledData,
		Date:       u.Date,
		Time:       u.Time,
	}
}

func pinRecords(pins []Pin) []analytics.PinRecord {
	records := make([]analytics.PinRecord, len(pins))
	for i := range pins {
		records[i] = pins[i].Record()
	}
	return records
}

func uploadRecords(uploads []Upload) []analytics.UploadRecord {
	records := make([]analytics.UploadRecord, len(uploads))
	for i := range uploads {
		records[i] = uploads[i].Record()
	}
	return records
}
