package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	// Family
	r.HandleFunc("/api/family", deps.UserHandler.GetFamily).Methods("GET")
	r.HandleFunc("/api/family", deps.UserHandler.CreateFamily).Methods("POST")
	r.HandleFunc("/api/family/join", deps.UserHandler.JoinFamily).Methods("POST")
	r.HandleFunc("/api/family/leave", deps.UserHandler.LeaveFamily).Methods("POST")

	// Transactions
	r.HandleFunc("/api/transaction", deps.TransactionHandler.List).Methods("GET")
	r.HandleFunc("/api/transaction", deps.TransactionHandler.Create).Methods("POST")
	r.HandleFunc("/api/transaction/{transactionId}", deps.TransactionHandler.Get).Methods("GET")
	r.HandleFunc("/api/transaction/{transactionId}", deps.TransactionHandler.Update).Methods("PUT")
	r.HandleFunc("/api/transaction/{transactionId}", deps.TransactionHandler.Delete).Methods("DELETE")

	// Budget
	r.HandleFunc("/api/budget", deps.BudgetHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Create).Methods("POST")
	r.HandleFunc("/api/budget/usage", deps.BudgetHandler.GetUsage).Methods("GET")
	r.HandleFunc("/api/budget/{categoryId:[0-9]+}", deps.BudgetHandler.Get).Methods("GET")
	r.HandleFunc("/api/budget/{categoryId:[0-9]+}", deps.BudgetHandler.Update).Methods("PUT")
	r.HandleFunc("/api/budget/{categoryId:[0-9]+}", deps.BudgetHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/budget/{categoryId:[0-9]+}/position", deps.BudgetHandler.SetPosition).Methods("PUT")

	// Savings
	r.HandleFunc("/api/savings", deps.SavingsHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/savings", deps.SavingsHandler.Create).Methods("POST")
	r.HandleFunc("/api/savings/progress", deps.SavingsHandler.GetProgress).Methods("GET")
	r.HandleFunc("/api/savings/surplus", deps.SavingsHandler.GetSurplus).Methods("GET")
	r.HandleFunc("/api/savings/allocation", deps.SavingsHandler.Allocate).Methods("POST")
	r.HandleFunc("/api/savings/{planId:[0-9]+}", deps.SavingsHandler.Get).Methods("GET")
	r.HandleFunc("/api/savings/{planId:[0-9]+}", deps.SavingsHandler.Update).Methods("PUT")
	r.HandleFunc("/api/savings/{planId:[0-9]+}", deps.SavingsHandler.Delete).Methods("DELETE")

	// Summary and reports
	r.HandleFunc("/api/summary", deps.ReportHandler.GetSummary).Methods("GET")
	r.HandleFunc("/api/summary/monthly", deps.ReportHandler.GetMonthlyRecap).Methods("GET")
	r.HandleFunc("/api/summary/timeline", deps.ReportHandler.GetTimeline).Methods("GET")
	r.HandleFunc("/api/summary/daily", deps.ReportHandler.GetDailyExpenses).Methods("GET")
	r.HandleFunc("/api/summary/comparison", deps.ReportHandler.GetMonthlyComparison).Methods("GET")
	r.HandleFunc("/api/summary/preview", deps.ReportHandler.Preview).Methods("POST")
}
