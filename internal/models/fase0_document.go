package models

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentType enumerates the Fase 0 legal documents.
type DocumentType string

const (
	DocumentNDA           DocumentType = "nda"
	DocumentMandatoVenta  DocumentType = "mandato_venta"
	DocumentMandatoCompra DocumentType = "mandato_compra"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentNDA, DocumentMandatoVenta, DocumentMandatoCompra:
		return true
	}
	return false
}

// DocumentStatus is the document lifecycle. Forward order is
// draft -> sent -> viewed -> signed; expired and cancelled are terminal
// side exits available before signature.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusSent      DocumentStatus = "sent"
	StatusViewed    DocumentStatus = "viewed"
	StatusSigned    DocumentStatus = "signed"
	StatusExpired   DocumentStatus = "expired"
	StatusCancelled DocumentStatus = "cancelled"
)

// Fase0Document is one generated legal document tied to a lead. FilledData
// holds the template variable -> value mapping used at generation time.
type Fase0Document struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	LeadID uint64 `gorm:"not null;index"`

	DocumentType DocumentType   `gorm:"type:varchar(20);not null;index"`
	Status       DocumentStatus `gorm:"type:varchar(12);not null;default:'draft';index"`

	FilledData datatypes.JSON `gorm:"type:jsonb"`

	SentAt    *time.Time `gorm:"type:timestamptz"`
	ViewedAt  *time.Time `gorm:"type:timestamptz"`
	SignedAt  *time.Time `gorm:"type:timestamptz"`
	ExpiresAt *time.Time `gorm:"type:timestamptz;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Fase0Document) TableName() string {
	return "fase0_documents"
}
