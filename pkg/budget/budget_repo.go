package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

type BudgetRepo interface {
	Store(ctx context.Context, userId int, category Category) (int, error)
	GetAll(ctx context.Context, userId int) ([]Category, error)
	Get(ctx context.Context, userId int, id int) (Category, error)
	Update(ctx context.Context, userId int, category Category) (bool, error)
	UpdatePosition(ctx context.Context, userId int, category Category) (bool, error)
	FindMaxPosition(ctx context.Context, userId int) (int, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
}

type BudgetRepoImpl struct {
	db *pgxpool.Pool
}

func NewBudgetRepo(db *pgxpool.Pool) *BudgetRepoImpl {
	return &BudgetRepoImpl{db: db}
}

func (r *BudgetRepoImpl) Store(ctx context.Context, userId int, category Category) (int, error) {
	query := `INSERT INTO budget_category (user_id, name, total, color, position)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id int
	err := r.db.QueryRow(ctx, query, userId, category.Name, category.Total, category.Color, category.Position).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateCategory
		}
		err := fmt.Errorf("could not store budget category: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *BudgetRepoImpl) GetAll(ctx context.Context, userId int) ([]Category, error) {
	query := `SELECT id, name, total, color, position FROM budget_category WHERE user_id = $1 ORDER BY position, id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query budget categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Total, &c.Color, &c.Position); err != nil {
			err := fmt.Errorf("could not scan budget category: %w", err)
			log.Error(err)
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *BudgetRepoImpl) Get(ctx context.Context, userId int, id int) (Category, error) {
	query := `SELECT id, name, total, color, position FROM budget_category WHERE user_id = $1 AND id = $2`
	var c Category
	err := r.db.QueryRow(ctx, query, userId, id).Scan(&c.ID, &c.Name, &c.Total, &c.Color, &c.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get budget category %d: %w", id, err)
		log.Error(err)
		return Category{}, err
	}
	return c, nil
}

func (r *BudgetRepoImpl) Update(ctx context.Context, userId int, category Category) (bool, error) {
	query := `UPDATE budget_category SET name = $1, total = $2, color = $3 WHERE user_id = $4 AND id = $5`
	result, err := r.db.Exec(ctx, query, category.Name, category.Total, category.Color, userId, category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicateCategory
		}
		err := fmt.Errorf("could not update budget category: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *BudgetRepoImpl) UpdatePosition(ctx context.Context, userId int, category Category) (bool, error) {
	query := `UPDATE budget_category SET position = $1 WHERE user_id = $2 AND id = $3`
	result, err := r.db.Exec(ctx, query, category.Position, userId, category.ID)
	if err != nil {
		err := fmt.Errorf("could not update budget category position: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *BudgetRepoImpl) FindMaxPosition(ctx context.Context, userId int) (int, error) {
	var maxPosition int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM budget_category WHERE user_id = $1`, userId).Scan(&maxPosition)
	if err != nil {
		err := fmt.Errorf("could not find max position: %w", err)
		log.Error(err)
		return 0, err
	}
	return maxPosition, nil
}

func (r *BudgetRepoImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM budget_category WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete budget category: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
