package savings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, userId int, plan Plan) (int, error)
	GetAll(ctx context.Context, userId int) ([]Plan, error)
	Get(ctx context.Context, userId int, id int) (Plan, error)
	Update(ctx context.Context, userId int, plan Plan) (bool, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, userId int, plan Plan) (int, error) {
	query := `INSERT INTO savings_plan (user_id, name, target, icon) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	if err := r.db.QueryRow(ctx, query, userId, plan.Name, plan.Target, plan.Icon).Scan(&id); err != nil {
		err := fmt.Errorf("could not store savings plan: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context, userId int) ([]Plan, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, target, icon FROM savings_plan WHERE user_id = $1 ORDER BY created, id`, userId)
	if err != nil {
		err := fmt.Errorf("could not query savings plans: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	plans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Plan, error) {
		var p Plan
		err := row.Scan(&p.ID, &p.Name, &p.Target, &p.Icon)
		return p, err
	})
	if err != nil {
		err := fmt.Errorf("could not scan savings plans: %w", err)
		log.Error(err)
		return nil, err
	}
	return plans, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id int) (Plan, error) {
	var p Plan
	err := r.db.QueryRow(ctx, `SELECT id, name, target, icon FROM savings_plan WHERE user_id = $1 AND id = $2`, userId, id).
		Scan(&p.ID, &p.Name, &p.Target, &p.Icon)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrPlanNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get savings plan %d: %w", id, err)
		log.Error(err)
		return Plan{}, err
	}
	return p, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, plan Plan) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE savings_plan SET name = $1, target = $2, icon = $3 WHERE user_id = $4 AND id = $5`,
		plan.Name, plan.Target, plan.Icon, userId, plan.ID)
	if err != nil {
		err := fmt.Errorf("could not update savings plan: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM savings_plan WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete savings plan: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
