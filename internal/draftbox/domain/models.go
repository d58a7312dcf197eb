// Package domain contains the operational-store documents the jobs
// read: draft boxes and the customers that own them.
package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JWax21/cleanbox-cron/internal/period"
)

// OrderStatusConfirmed marks a customer whose order will definitely
// ship; every other order status counts as pending demand.
const OrderStatusConfirmed = "Confirmed"

// Stripe subscription states considered current for demand planning.
const (
	StripeStatusActive   = "active"
	StripeStatusTrialing = "trialing"
)

// SnackLine is one line item inside a draft box. Count is a pointer
// because the operational store omits the field for single-unit lines;
// Units applies the default.
type SnackLine struct {
	SnackID string `bson:"SnackID" json:"snackId"`
	Count   *int64 `bson:"count,omitempty" json:"count,omitempty"`
}

func (l SnackLine) Units() int64 {
	if l.Count == nil {
		return 1
	}
	return *l.Count
}

// DraftBox is a proposed shipment for one customer in one billing
// period, before final confirmation.
type DraftBox struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CustomerID string             `bson:"customerID" json:"customerId"`
	Month      period.Period      `bson:"month" json:"month"`
	Snacks     []SnackLine        `bson:"snacks" json:"snacks"`
}

// Customer is one subscriber record.
type Customer struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CustomerID       string             `bson:"customerID" json:"customerId"`
	OrderStatus      string             `bson:"order_status" json:"orderStatus"`
	StripeStatus     string             `bson:"stripe_status" json:"stripeStatus"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	Email            string             `bson:"email" json:"email"`
	SubscriptionType string             `bson:"subscription_type" json:"subscriptionType"`
}

// DisplayName joins the trimmed name parts with a single space.
func (c Customer) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
