package aggregation

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/finmate/finmate/internal/utils"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type rawTransaction struct {
	Id              json.RawMessage `json:"id"`
	Category        json.RawMessage `json:"category"`
	Amount          json.RawMessage `json:"amount"`
	Type            json.RawMessage `json:"type"`
	Date            json.RawMessage `json:"date"`
	TransactionDate json.RawMessage `json:"transaction_date"`
	Note            json.RawMessage `json:"note"`
}

// DecodeLenient reads a transaction log from untrusted JSON without failing. Anything other
// than an array yields an empty log, non-object elements are skipped, an amount that is not a
// number or is out of range (negative, 10^16 or more, more than 2 decimals) reads as 0 and an unparseable date reads as the zero time. Legacy budget and savings plan
// definition records are dropped.
func DecodeLenient(raw []byte) []transaction.Transaction {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		log.Debugf("lenient decode: input is not an array: %v", err)
		return []transaction.Transaction{}
	}

	result := make([]transaction.Transaction, 0, len(elements))
	for i, element := range elements {
		if !bytes.HasPrefix(bytes.TrimSpace(element), []byte("{")) {
			log.Debugf("lenient decode: skipping non-object element %d", i)
			continue
		}
		var r rawTransaction
		if err := json.Unmarshal(element, &r); err != nil {
			log.Debugf("lenient decode: skipping element %d: %v", i, err)
			continue
		}
		t := transaction.Transaction{
			Id:       lenientString(r.Id),
			Category: lenientString(r.Category),
			Amount:   lenientAmount(r.Amount),
			Type:     transaction.Type(strings.ToLower(lenientString(r.Type))),
			Note:     lenientString(r.Note),
		}
		if t.Type.IsLegacy() {
			log.Debugf("lenient decode: dropping legacy %s definition %q", t.Type, t.Category)
			continue
		}
		date := r.TransactionDate
		if len(date) == 0 || bytes.Equal(date, []byte("null")) {
			date = r.Date
		}
		t.Date = lenientDate(lenientString(date))
		result = append(result, t)
	}
	return result
}

func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func lenientAmount(raw json.RawMessage) decimal.Decimal {
	value := strings.TrimSpace(lenientString(raw))
	if value == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(value)
	if err != nil || !transaction.ValidAmount(amount) {
		return decimal.Zero
	}
	return amount
}

var dateLayouts = []string{DateKeyLayout, time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"}

func lenientDate(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return utils.DateOf(parsed)
		}
	}
	return time.Time{}
}
