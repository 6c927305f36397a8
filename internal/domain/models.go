// Package domain defines the persistence models for the studio backend:
// live-chat messages, orders, reviews, known visitors, and content sections.
// These types are mapped with GORM and double as the records synchronized by
// the client-side list stores.
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DeliveryStatus is the advisory delivery marker of a visitor-authored
// chat message.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliverySeen      DeliveryStatus = "seen"
)

// Valid reports whether s is a known delivery status.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliverySent, DeliveryDelivered, DeliverySeen:
		return true
	}
	return false
}

// ChatMessage is a single live-chat utterance inside one visitor's
// conversation. Messages are immutable once written except for Status.
//
// Fields:
//   - ID: ULID primary key, usually generated by the client before the write.
//   - VisitorID: partition key of the conversation (indexed with CreatedAt).
//   - Text: message body, NFC-normalized by the service layer.
//   - IsUser: true when written by the visitor, false for operator replies.
//   - Status: optional delivery marker, only meaningful when IsUser is true.
type ChatMessage struct {
	ID        string         `json:"id"         gorm:"type:varchar(32);primaryKey"`
	VisitorID string         `json:"visitor_id" gorm:"type:varchar(64);not null;index:idx_chat_visitor,priority:1"`
	Text      string         `json:"text"       gorm:"type:text;not null"`
	IsUser    bool           `json:"is_user"    gorm:"not null"`
	Status    DeliveryStatus `json:"status,omitempty" gorm:"type:varchar(16)"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_chat_visitor,priority:2"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

func (m ChatMessage) RecordID() string        { return m.ID }
func (m ChatMessage) RecordTime() time.Time   { return m.CreatedAt }
func (m ChatMessage) RecordPartition() string { return m.VisitorID }

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAssigned  OrderStatus = "assigned"
	OrderCompleted OrderStatus = "completed"
)

// CanTransition reports whether an order may move from s to next. Orders
// only move forward; reassigning an already assigned order is allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderAssigned || next == OrderCompleted
	case OrderAssigned:
		return next == OrderAssigned || next == OrderCompleted
	}
	return false
}

// Order is a package purchase placed through the checkout flow.
//
// AssignedRepIndex points at a position in the team list of the site
// content. It is positional, so editing the team list can re-point it.
type Order struct {
	ID               string      `json:"id"                 gorm:"type:varchar(32);primaryKey"`
	VisitorID        string      `json:"visitor_id"         gorm:"type:varchar(64);not null;index"`
	PackageName      string      `json:"package_name"       gorm:"type:varchar(255);not null"`
	Price            string      `json:"price"              gorm:"type:varchar(64);not null"`
	CustomerName     string      `json:"customer_name"      gorm:"type:varchar(255);not null"`
	CustomerContact  string      `json:"customer_contact"   gorm:"type:varchar(255);not null"`
	Status           OrderStatus `json:"status"             gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','assigned','completed');index"`
	AssignedRepIndex *int        `json:"assigned_rep_index,omitempty"`
	Date             string      `json:"date"               gorm:"type:varchar(64)"`
	CreatedAt        time.Time   `json:"created_at"         gorm:"index"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

func (o Order) RecordID() string        { return o.ID }
func (o Order) RecordTime() time.Time   { return o.CreatedAt }
func (o Order) RecordPartition() string { return o.VisitorID }

// Review is a public rating left on the site.
type Review struct {
	ID        string    `json:"id"         gorm:"type:varchar(32);primaryKey"`
	VisitorID string    `json:"visitor_id" gorm:"type:varchar(64);index"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null;default:'Anonymous Visitor'"`
	Rating    int       `json:"rating"     gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment   string    `json:"comment"    gorm:"type:text"`
	Date      string    `json:"date"       gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

func (r Review) RecordID() string      { return r.ID }
func (r Review) RecordTime() time.Time { return r.CreatedAt }

// Visitor stores the display name a visitor chose for themselves.
type Visitor struct {
	VisitorID string    `json:"visitor_id" gorm:"type:varchar(64);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Visitor.
func (Visitor) TableName() string { return "visitors" }

// DefaultVisitorName is the inbox label for visitors that never gave a name.
func DefaultVisitorName(visitorID string) string {
	short := visitorID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Visitor %s", short)
}

// Well-known content sections.
const (
	SectionSite          = "all"
	SectionAdminSettings = "admin_settings"
	SectionSiteStats     = "site_stats"
)

// ContentSection is a named JSON document. The whole public site content
// lives under SectionSite; the other sections hold operational state.
type ContentSection struct {
	Section   string    `json:"section" gorm:"type:varchar(64);primaryKey"`
	Data      string    `json:"-"       gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ContentSection.
func (ContentSection) TableName() string { return "content_sections" }

// JSON returns the section payload as raw JSON.
func (c ContentSection) JSON() json.RawMessage {
	if c.Data == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(c.Data)
}

// AdminSettings is the payload of SectionAdminSettings.
type AdminSettings struct {
	FCMToken  string    `json:"fcm_token"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SiteStats is the payload of SectionSiteStats.
type SiteStats struct {
	TotalVisits int64     `json:"total_visits"`
	LastVisit   time.Time `json:"last_visit"`
}

// InboxPreview is one row of the admin inbox: the latest message of a
// conversation and the visitor's display name.
type InboxPreview struct {
	VisitorID   string    `json:"visitor_id"`
	Name        string    `json:"name"`
	LastMessage string    `json:"last_message"`
	LastTime    time.Time `json:"last_time"`
}

func (p InboxPreview) RecordID() string        { return p.VisitorID }
func (p InboxPreview) RecordTime() time.Time   { return p.LastTime }
func (p InboxPreview) RecordPartition() string { return p.VisitorID }
