package aggregation

import (
	"sort"
	"time"

	"github.com/finmate/finmate/pkg/transaction"
	log "github.com/sirupsen/logrus"
)

// DateKeyLayout is the key format of a date group.
const DateKeyLayout = "2006-01-02"

type DateGroup struct {
	Date         string
	Transactions []transaction.Transaction
}

// GroupByDate buckets transactions by calendar day, most recent day first. Transactions keep
// their input order inside a group. Those without a date are left out.
func GroupByDate(transactions []transaction.Transaction) []DateGroup {
	index := make(map[string]int)
	groups := make([]DateGroup, 0)
	skipped := 0
	for _, t := range transactions {
		if t.Date.IsZero() {
			skipped++
			continue
		}
		key := t.Date.Format(DateKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{Date: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	if skipped > 0 {
		log.Warnf("excluded %d transaction(s) without a valid date from date grouping", skipped)
	}

	// the key layout sorts lexicographically in date order
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date > groups[j].Date
	})
	return groups
}

// FilterByPeriod keeps transactions dated within [from, to]. A zero bound is open.
// Transactions without a date are dropped when any bound is set.
func FilterByPeriod(transactions []transaction.Transaction, from, to time.Time) []transaction.Transaction {
	if from.IsZero() && to.IsZero() {
		return append([]transaction.Transaction(nil), transactions...)
	}
	result := make([]transaction.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Date.IsZero() {
			continue
		}
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && t.Date.After(to) {
			continue
		}
		result = append(result, t)
	}
	return result
}
