package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/finmate/finmate/pkg/aggregation"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type RecapRenderer interface {
	RenderRecap(recap aggregation.Recap) (string, error)
}

type CsvRecapRendererImpl struct {
}

func NewCsvRecapRenderer() *CsvRecapRendererImpl {
	return &CsvRecapRendererImpl{}
}

func (t *CsvRecapRendererImpl) RenderRecap(recap aggregation.Recap) (string, error) {
	data := [][]string{
		{"Month", fmt.Sprintf("%04d-%02d", recap.Year, int(recap.Month))},
		{"Income", amountToString(recap.Income)},
		{"Expense", amountToString(recap.Expense)},
		{"Savings", amountToString(recap.Savings)},
		{"Net", amountToString(recap.Net)},
		{"Daily average expense", amountToString(recap.DailyAverage)},
		{},
		{"Category", "Expense", "Share"},
	}
	for _, c := range recap.ExpenseByCategory {
		data = append(data, []string{c.Category, amountToString(c.Amount), fmt.Sprintf("%d%%", c.Percentage)})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func amountToString(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
