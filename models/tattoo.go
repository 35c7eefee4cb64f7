package models

import "time"

// Slot is a bookable time window for one service type. It is mutated exactly
// once, by the booking transaction, from isBooked=false to true.
type Slot struct {
	ID               string    `json:"id" bson:"id"`
	Date             string    `json:"date" bson:"date"`           // YYYY-MM-DD
	StartTime        string    `json:"startTime" bson:"startTime"` // HH:MM
	EndTime          string    `json:"endTime" bson:"endTime"`
	ServiceType      string    `json:"serviceType" bson:"serviceType"`
	IsBooked         bool      `json:"isBooked" bson:"isBooked"`
	BookedByUserID   string    `json:"bookedByUserId,omitempty" bson:"bookedByUserId,omitempty"`
	BookedByUserName string    `json:"bookedByUserName,omitempty" bson:"bookedByUserName,omitempty"`
	BookedByEmail    string    `json:"bookedByEmail,omitempty" bson:"bookedByEmail,omitempty"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
}

type BookedBy struct {
	UserID   string
	UserName string
	Email    string
}

type Size struct {
	Width  float64 `json:"width" bson:"width"`   // cm
	Height float64 `json:"height" bson:"height"` // cm
}

type Pricing struct {
	BasePrice            float64    `json:"basePrice" bson:"basePrice"`
	BodyPartMultiplier   float64    `json:"bodyPartMultiplier" bson:"bodyPartMultiplier"`
	SizeMultiplier       float64    `json:"sizeMultiplier" bson:"sizeMultiplier"`
	StyleMultiplier      float64    `json:"styleMultiplier" bson:"styleMultiplier"`
	ComplexityMultiplier float64    `json:"complexityMultiplier" bson:"complexityMultiplier"`
	TotalPrice           float64    `json:"totalPrice" bson:"totalPrice"`
	DepositAmount        float64    `json:"depositAmount" bson:"depositAmount"`
	DepositPaid          bool       `json:"depositPaid" bson:"depositPaid"`
	DepositPaidAt        *time.Time `json:"depositPaidAt,omitempty" bson:"depositPaidAt,omitempty"`
}

type TattooDetails struct {
	Size              Size     `json:"size" bson:"size"`
	EstimatedDuration int      `json:"estimatedDuration" bson:"estimatedDuration"` // minutes
	Complexity        string   `json:"complexity" bson:"complexity"`
	Colors            []string `json:"colors" bson:"colors"`
	ReferenceImages   []string `json:"referenceImages,omitempty" bson:"referenceImages,omitempty"`
}

type PaymentState struct {
	Status string     `json:"status" bson:"status"` // pending, deposit_paid, fully_paid, refunded
	PaidAt *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

type MaterialsUsed struct {
	Items     []UsageItem `json:"items" bson:"items"`
	TotalCost float64     `json:"totalCost" bson:"totalCost"`
}

// Appointment is a confirmed booking. Date and time are copied from the slot
// at booking time, never from client input.
type Appointment struct {
	ID            string         `json:"id" bson:"id"`
	Date          string         `json:"date" bson:"date"`
	Time          string         `json:"time" bson:"time"`
	ClientName    string         `json:"clientName" bson:"clientName"`
	Service       string         `json:"service" bson:"service"`
	ServiceType   string         `json:"serviceType" bson:"serviceType"`
	UserID        string         `json:"userId" bson:"userId"`
	ClientEmail   string         `json:"clientEmail" bson:"clientEmail"`
	BodyPart      string         `json:"bodyPart,omitempty" bson:"bodyPart,omitempty"`
	TattooStyle   string         `json:"tattooStyle,omitempty" bson:"tattooStyle,omitempty"`
	Notes         string         `json:"notes,omitempty" bson:"notes,omitempty"`
	Pricing       *Pricing       `json:"pricing,omitempty" bson:"pricing,omitempty"`
	TattooDetails *TattooDetails `json:"tattooDetails,omitempty" bson:"tattooDetails,omitempty"`
	Payment       *PaymentState  `json:"payment,omitempty" bson:"payment,omitempty"`
	Materials     *MaterialsUsed `json:"materials,omitempty" bson:"materials,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// PricingRule is the multiplier configuration used to price tattoo
// appointments. Exactly one rule is active at a time; the default rule lives
// under a fixed id so re-seeding stays idempotent.
type PricingRule struct {
	ID                    string             `json:"id" bson:"id"`
	Name                  string             `json:"name" bson:"name"`
	Description           string             `json:"description,omitempty" bson:"description,omitempty"`
	BasePrice             float64            `json:"basePrice" bson:"basePrice"` // EUR per hour
	BodyPartMultipliers   map[string]float64 `json:"bodyPartMultipliers" bson:"bodyPartMultipliers"`
	SizeMultipliers       map[string]float64 `json:"sizeMultipliers" bson:"sizeMultipliers"`
	StyleMultipliers      map[string]float64 `json:"styleMultipliers" bson:"styleMultipliers"`
	ComplexityMultipliers map[string]float64 `json:"complexityMultipliers" bson:"complexityMultipliers"`
	DepositPercentage     float64            `json:"depositPercentage" bson:"depositPercentage"`
	IsActive              bool               `json:"isActive" bson:"isActive"`
	CreatedAt             time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CustomerHistory rows are append-only and never mutated.
type CustomerHistory struct {
	ID          string         `json:"id" bson:"id"`
	UserID      string         `json:"userId" bson:"userId"`
	Type        string         `json:"type" bson:"type"` // appointment, payment, review, material_usage
	ReferenceID string         `json:"referenceId" bson:"referenceId"`
	Description string         `json:"description" bson:"description"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
}

const (
	NotificationReminder  = "appointment_reminder"
	NotificationAftercare = "aftercare"
	NotificationPayment   = "payment_reminder"
	NotificationGeneral   = "general"

	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

type Notification struct {
	ID           string     `json:"id" bson:"id"`
	UserID       string     `json:"userId" bson:"userId"`
	Type         string     `json:"type" bson:"type"`
	Title        string     `json:"title" bson:"title"`
	Message      string     `json:"message" bson:"message"`
	Channel      string     `json:"channel" bson:"channel"` // email, whatsapp, telegram
	Status       string     `json:"status" bson:"status"`
	ScheduledFor time.Time  `json:"scheduledFor" bson:"scheduledFor"`
	SentAt       *time.Time `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

type Material struct {
	ID            string     `json:"id" bson:"id"`
	Name          string     `json:"name" bson:"name"`
	Category      string     `json:"category" bson:"category"` // ink, needle, disposable, equipment, other
	Unit          string     `json:"unit" bson:"unit"`
	CurrentStock  float64    `json:"currentStock" bson:"currentStock"`
	MinimumStock  float64    `json:"minimumStock" bson:"minimumStock"`
	CostPerUnit   float64    `json:"costPerUnit" bson:"costPerUnit"`
	Supplier      string     `json:"supplier,omitempty" bson:"supplier,omitempty"`
	LastRestocked *time.Time `json:"lastRestocked,omitempty" bson:"lastRestocked,omitempty"`
	IsActive      bool       `json:"isActive" bson:"isActive"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type UsageItem struct {
	MaterialID   string    `json:"materialId" bson:"materialId"`
	MaterialName string    `json:"materialName" bson:"materialName"`
	QuantityUsed float64   `json:"quantityUsed" bson:"quantityUsed"`
	Unit         string    `json:"unit" bson:"unit"`
	CostPerUnit  float64   `json:"costPerUnit" bson:"costPerUnit"`
	TotalCost    float64   `json:"totalCost" bson:"totalCost"`
	UsedAt       time.Time `json:"usedAt" bson:"usedAt"`
}

type Payment struct {
	ID            string    `json:"id" bson:"id"`
	AppointmentID string    `json:"appointmentId" bson:"appointmentId"`
	UserID        string    `json:"userId" bson:"userId"`
	Amount        float64   `json:"amount" bson:"amount"`
	Currency      string    `json:"currency" bson:"currency"`
	PaymentMethod string    `json:"paymentMethod" bson:"paymentMethod"` // stripe, paypal, cash, bank_transfer
	PaymentType   string    `json:"paymentType" bson:"paymentType"`     // deposit, remaining, full
	Status        string    `json:"status" bson:"status"`
	ProcessedAt   time.Time `json:"processedAt" bson:"processedAt"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Review struct {
	ID            string    `json:"id" bson:"id"`
	AppointmentID string    `json:"appointmentId" bson:"appointmentId"`
	UserID        string    `json:"userId" bson:"userId"`
	Rating        int       `json:"rating" bson:"rating"`
	Comment       string    `json:"comment,omitempty" bson:"comment,omitempty"`
	IsAnonymous   bool      `json:"isAnonymous" bson:"isAnonymous"`
	IsVerified    bool      `json:"isVerified" bson:"isVerified"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

type AftercareTemplate struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	IsActive  bool      `json:"isActive" bson:"isActive"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Mail is the outbox contract consumed by the external mail dispatcher.
type Mail struct {
	ID      string      `json:"id" bson:"id"`
	To      string      `json:"to" bson:"to"`
	Message MailMessage `json:"message" bson:"message"`
}

type MailMessage struct {
	Subject string `json:"subject" bson:"subject"`
	HTML    string `json:"html" bson:"html"`
}

type User struct {
	ID           string    `json:"id" bson:"id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	Roles        []string  `json:"roles" bson:"roles"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	LastLogin    time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
}
