package forecast

import (
	"sort"

	draftboxdomain "github.com/JWax21/cleanbox-cron/internal/draftbox/domain"
	"github.com/JWax21/cleanbox-cron/internal/period"
)

// DemandEntry is the status-split projected demand for one SKU.
type DemandEntry struct {
	SKU       string
	Confirmed int64
	Pending   int64
	Projected int64
}

// DemandBySKU expands every snack line item to a single unit and
// splits each SKU's demand by the owning customer's order status.
// Output is sorted by projected demand descending; ties keep
// first-appearance order.
func DemandBySKU(joined []JoinedBox) []DemandEntry {
	index := make(map[string]int)
	var entries []DemandEntry
	for _, j := range joined {
		confirmed := j.Customer.OrderStatus == draftboxdomain.OrderStatusConfirmed
		for _, line := range j.Box.Snacks {
			i, ok := index[line.SnackID]
			if !ok {
				i = len(entries)
				index[line.SnackID] = i
				entries = append(entries, DemandEntry{SKU: line.SnackID})
			}
			if confirmed {
				entries[i].Confirmed++
			} else {
				entries[i].Pending++
			}
		}
	}
	for i := range entries {
		entries[i].Projected = entries[i].Confirmed + entries[i].Pending
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Projected > entries[b].Projected
	})
	return entries
}

// FrequencyEntry is an occurrence count for one SKU.
type FrequencyEntry struct {
	SKU   string
	Count int64
}

// FrequencyBySKU counts snack line items per SKU. Each array element
// counts exactly once regardless of its count field; callers apply the
// active-customer pre-filter at join time.
func FrequencyBySKU(joined []JoinedBox) []FrequencyEntry {
	index := make(map[string]int)
	var entries []FrequencyEntry
	for _, j := range joined {
		for _, line := range j.Box.Snacks {
			i, ok := index[line.SnackID]
			if !ok {
				i = len(entries)
				index[line.SnackID] = i
				entries = append(entries, FrequencyEntry{SKU: line.SnackID})
			}
			entries[i].Count++
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Count > entries[b].Count
	})
	return entries
}

// OrderEntry is one customer's snack total for one period.
type OrderEntry struct {
	CustomerID       string
	Name             string
	Email            string
	SubscriptionType string
	Period           period.Period
	TotalSnacks      int64
}

// OrdersByCustomer produces one entry per joined draft box with the
// box's total snack units, honoring each line's count field and
// defaulting absent counts to one. Emission order follows the input.
func OrdersByCustomer(joined []JoinedBox) []OrderEntry {
	entries := make([]OrderEntry, 0, len(joined))
	for _, j := range joined {
		var total int64
		for _, line := range j.Box.Snacks {
			total += line.Units()
		}
		entries = append(entries, OrderEntry{
			CustomerID:       j.Box.CustomerID,
			Name:             j.Customer.DisplayName(),
			Email:            j.Customer.Email,
			SubscriptionType: j.Customer.SubscriptionType,
			Period:           j.Box.Month,
			TotalSnacks:      total,
		})
	}
	return entries
}
