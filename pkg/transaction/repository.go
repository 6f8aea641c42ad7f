package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, userId int, transaction Transaction) (Transaction, error)
	Get(ctx context.Context, userId int, id string) (Transaction, error)
	List(ctx context.Context, userId int, filter Filter) ([]Transaction, error)
	// ListForUsers returns the combined log of userIds, newest first.
	ListForUsers(ctx context.Context, userIds []int) ([]Transaction, error)
	Update(ctx context.Context, userId int, transaction Transaction) (Transaction, error)
	Delete(ctx context.Context, userId int, id string) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectColumns = `id, category, amount, type, method, transaction_date, COALESCE(note, ''),
	COALESCE(budget_category_id, 0), COALESCE(savings_plan_id, 0), created`

func (r *RepositoryImpl) Store(ctx context.Context, userId int, t Transaction) (Transaction, error) {
	query := `INSERT INTO transactions
		(id, user_id, category, amount, type, method, transaction_date, note, budget_category_id, savings_plan_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, 0), NULLIF($10, 0))
		RETURNING ` + selectColumns

	row := r.db.QueryRow(ctx, query, t.Id, userId, t.Category, t.Amount, t.Type, t.Method, t.Date, t.Note,
		t.BudgetCategoryId, t.SavingsPlanId)
	stored, err := scanTransaction(row)
	if isForeignKeyViolation(err) {
		return Transaction{}, fmt.Errorf("%w: linked category or plan no longer exists", ErrInvalidTransaction)
	} else if err != nil {
		log.Errorf("failed to store transaction: %v", err)
		return Transaction{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id string) (Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE user_id = $1 AND id = $2`
	t, err := scanTransaction(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	} else if err != nil {
		log.Errorf("failed to get transaction %s: %v", id, err)
		return Transaction{}, err
	}
	return t, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userId}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("transaction_date <= $%d", len(args)))
	}

	return r.query(ctx, strings.Join(conditions, " AND "), args...)
}

func (r *RepositoryImpl) ListForUsers(ctx context.Context, userIds []int) ([]Transaction, error) {
	return r.query(ctx, "user_id = ANY($1)", userIds)
}

func (r *RepositoryImpl) query(ctx context.Context, where string, args ...any) ([]Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE ` + where +
		` ORDER BY transaction_date DESC, created DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Errorf("failed to list transactions: %v", err)
		return nil, err
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			log.Errorf("failed to scan transaction: %v", err)
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("failed to iterate transactions: %v", err)
		return nil, err
	}
	return transactions, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, t Transaction) (Transaction, error) {
	query := `UPDATE transactions SET
		category = $1, amount = $2, type = $3, method = $4, transaction_date = $5, note = $6,
		budget_category_id = NULLIF($7, 0), savings_plan_id = NULLIF($8, 0)
		WHERE user_id = $9 AND id = $10
		RETURNING ` + selectColumns

	row := r.db.QueryRow(ctx, query, t.Category, t.Amount, t.Type, t.Method, t.Date, t.Note,
		t.BudgetCategoryId, t.SavingsPlanId, userId, t.Id)
	updated, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	} else if isForeignKeyViolation(err) {
		return Transaction{}, fmt.Errorf("%w: linked category or plan no longer exists", ErrInvalidTransaction)
	} else if err != nil {
		log.Errorf("failed to update transaction %s: %v", t.Id, err)
		return Transaction{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		log.Errorf("failed to delete transaction %s: %v", id, err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) BudgetCategoryExists(ctx context.Context, userId int, id int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM budget_category WHERE user_id = $1 AND id = $2)`, userId, id)
}

func (r *RepositoryImpl) SavingsPlanExists(ctx context.Context, userId int, id int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM savings_plan WHERE user_id = $1 AND id = $2)`, userId, id)
}

func (r *RepositoryImpl) exists(ctx context.Context, query string, userId int, id int) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, query, userId, id).Scan(&exists); err != nil {
		log.Errorf("failed to check link target %d: %v", id, err)
		return false, err
	}
	return exists, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var txType, method string
	err := row.Scan(&t.Id, &t.Category, &t.Amount, &txType, &method, &t.Date, &t.Note,
		&t.BudgetCategoryId, &t.SavingsPlanId, &t.Created)
	if err != nil {
		return Transaction{}, err
	}
	t.Type = Type(txType)
	t.Method = Method(method)
	return t, nil
}
