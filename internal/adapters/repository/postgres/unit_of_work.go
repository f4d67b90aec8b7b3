package postgres

import (
	"context"
	"database/sql"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
)

type sqlUnitOfWork struct {
	db *sql.DB
	tx *sql.Tx
}

func NewUnitOfWork(db *sql.DB) port.UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) TrackingRepo() port.TrackingRepository {
	if u.tx != nil {
		return NewSQLTrackingRepository(u.tx)
	}
	return NewSQLTrackingRepository(u.db)
}

func (u *sqlUnitOfWork) ResourceRepo() port.ResourceRepository {
	if u.tx != nil {
		return NewSQLResourceRepository(u.tx)
	}
	return NewSQLResourceRepository(u.db)
}

func (u *sqlUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	uowWithTx := &sqlUnitOfWork{db: u.db, tx: tx}

	if err := fn(uowWithTx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
