package app

import (
	"github.com/finmate/finmate/internal/event_bus"
	"github.com/finmate/finmate/internal/utils"
	"github.com/finmate/finmate/pkg/budget"
	"github.com/finmate/finmate/pkg/report"
	"github.com/finmate/finmate/pkg/savings"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/finmate/finmate/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	UserService *user.UserServiceImpl
	UserHandler *user.Handler

	TransactionService *transaction.ServiceImpl
	TransactionHandler *transaction.Handler

	BudgetRepo    budget.BudgetRepo
	BudgetService *budget.BudgetServiceImpl
	BudgetHandler *budget.BudgetHandler

	SavingsService *savings.ServiceImpl
	SavingsHandler *savings.Handler

	ReportService    *report.ServiceImpl
	CsvRecapRenderer *report.CsvRecapRendererImpl
	ReportHandler    *report.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	transactionRepo := transaction.NewRepository(db)
	deps.TransactionService = transaction.NewService(transactionRepo, transactionRepo, deps.EventBus)
	deps.TransactionHandler = transaction.NewHandler(deps.TransactionService)

	deps.BudgetRepo = budget.NewBudgetRepo(db)
	deps.BudgetService = budget.NewBudgetServiceImpl(deps.BudgetRepo, deps.TransactionService)
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService)

	deps.SavingsService = savings.NewService(savings.NewRepository(db), deps.TransactionService, deps.EventBus, deps.Clock)
	deps.SavingsHandler = savings.NewHandler(deps.SavingsService)

	deps.ReportService = report.NewService(deps.TransactionService, deps.UserService, deps.Clock)
	deps.CsvRecapRenderer = report.NewCsvRecapRenderer()
	deps.ReportHandler = report.NewHandler(deps.ReportService, deps.CsvRecapRenderer, deps.Clock)

	return deps
}
