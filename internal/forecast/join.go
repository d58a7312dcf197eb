// Package forecast holds the join and aggregation core shared by the
// three reporting jobs. Everything here is pure: records in, rows out.
package forecast

import (
	"strings"

	draftboxdomain "github.com/JWax21/cleanbox-cron/internal/draftbox/domain"
)

// SkipReason says why a draft box was left out of an aggregate.
type SkipReason string

const (
	SkipMissingCustomerID SkipReason = "missing_customer_id"
	SkipUnknownCustomer   SkipReason = "unknown_customer"
	SkipStatusFiltered    SkipReason = "status_filtered"
)

// StatusPredicate decides whether a customer participates in an
// aggregate. Jobs that classify by status after the join use AnyStatus
// so their denominator includes every resolvable customer.
type StatusPredicate func(draftboxdomain.Customer) bool

func AnyStatus(draftboxdomain.Customer) bool { return true }

func StripeActive(c draftboxdomain.Customer) bool {
	return c.StripeStatus == draftboxdomain.StripeStatusActive
}

func ActiveOrTrialing(c draftboxdomain.Customer) bool {
	switch c.StripeStatus {
	case draftboxdomain.StripeStatusActive, draftboxdomain.StripeStatusTrialing:
		return true
	}
	return false
}

// JoinedBox is a draft box with its owning customer resolved.
type JoinedBox struct {
	Box      draftboxdomain.DraftBox
	Customer draftboxdomain.Customer
}

// JoinResult is the explicit keep-or-skip outcome of joining one draft
// box. Fatal conditions travel as ordinary errors from the fetch
// layer, never through this type.
type JoinResult struct {
	Joined  JoinedBox
	Skipped bool
	Reason  SkipReason
}

func skip(reason SkipReason) JoinResult {
	return JoinResult{Skipped: true, Reason: reason}
}

// Join resolves one draft box against the customer set and applies the
// job's status predicate.
func Join(box draftboxdomain.DraftBox, customers map[string]draftboxdomain.Customer, keep StatusPredicate) JoinResult {
	if strings.TrimSpace(box.CustomerID) == "" {
		return skip(SkipMissingCustomerID)
	}
	customer, ok := customers[box.CustomerID]
	if !ok {
		return skip(SkipUnknownCustomer)
	}
	if keep != nil && !keep(customer) {
		return skip(SkipStatusFiltered)
	}
	return JoinResult{Joined: JoinedBox{Box: box, Customer: customer}}
}

// JoinAll joins every box in input order, reporting each skip through
// onSkip.
func JoinAll(
	boxes []draftboxdomain.DraftBox,
	customers map[string]draftboxdomain.Customer,
	keep StatusPredicate,
	onSkip func(draftboxdomain.DraftBox, SkipReason),
) []JoinedBox {
	joined := make([]JoinedBox, 0, len(boxes))
	for _, box := range boxes {
		result := Join(box, customers, keep)
		if result.Skipped {
			if onSkip != nil {
				onSkip(box, result.Reason)
			}
			continue
		}
		joined = append(joined, result.Joined)
	}
	return joined
}
