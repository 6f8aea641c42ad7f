package report

import (
	"testing"
	"time"

	"github.com/finmate/finmate/pkg/aggregation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvRecapRendererImpl_RenderRecap(t *testing.T) {
	tests := []struct {
		name  string
		recap aggregation.Recap
		want  string
	}{
		{
			name: "recap with categories",
			recap: aggregation.Recap{
				Year:         2025,
				Month:        time.March,
				Income:       decimal.NewFromInt(600000),
				Expense:      decimal.NewFromInt(500000),
				Savings:      decimal.NewFromInt(50000),
				Net:          decimal.NewFromInt(100000),
				DailyAverage: decimal.RequireFromString("16129.03"),
				ExpenseByCategory: []aggregation.CategoryAmount{
					{Category: "Makan", Amount: decimal.NewFromInt(300000), Percentage: 60},
					{Category: "Makan, Minum", Amount: decimal.NewFromInt(200000), Percentage: 40},
				},
			},
			want: "Month,2025-03\n" +
				"Income,600000.00\n" +
				"Expense,500000.00\n" +
				"Savings,50000.00\n" +
				"Net,100000.00\n" +
				"Daily average expense,16129.03\n" +
				"\n" +
				"Category,Expense,Share\n" +
				"Makan,300000.00,60%\n" +
				"\"Makan, Minum\",200000.00,40%\n",
		},
		{
			name:  "empty recap",
			recap: aggregation.Recap{Year: 2024, Month: time.December},
			want: "Month,2024-12\n" +
				"Income,0.00\n" +
				"Expense,0.00\n" +
				"Savings,0.00\n" +
				"Net,0.00\n" +
				"Daily average expense,0.00\n" +
				"\n" +
				"Category,Expense,Share\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewCsvRecapRenderer()

			got, err := renderer.RenderRecap(tt.recap)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
