package db

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/uptrace/bun"
)

// Table describes one table of the schema. Tables are created in order,
// so a table must come after every table its foreign keys reference.
type Table struct {
	Model       interface{}
	ForeignKeys []ForeignKey
	Checks      []Check
}

type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

func (fk ForeignKey) clause() string {
	refColumn := fk.RefColumn
	if refColumn == "" {
		refColumn = "id"
	}
	return fmt.Sprintf(`("%s") REFERENCES "%s" ("%s") ON DELETE CASCADE`, fk.Column, fk.RefTable, refColumn)
}

type Check struct {
	Name string
	Expr string
}

// Cascade is shorthand for a foreign key on column to table(id).
func Cascade(column, table string) ForeignKey {
	return ForeignKey{Column: column, RefTable: table}
}

func RunMigrations(ctx context.Context, db *bun.DB, tables ...Table) error {
	for _, table := range tables {
		q := db.NewCreateTable().
			Model(table.Model).
			IfNotExists()

		for _, fk := range table.ForeignKeys {
			q = q.ForeignKey(fk.clause())
		}

		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", table.Model, err)
		}

		if len(table.Checks) == 0 {
			continue
		}

		name := db.Table(tableType(table.Model)).Name
		for _, check := range table.Checks {
			if err := ensureCheck(ctx, db, name, check); err != nil {
				return err
			}
		}
	}

	slog.Info("database migrations completed successfully", "tables", len(tables))
	return nil
}

func tableType(model interface{}) reflect.Type {
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ
}

func ensureCheck(ctx context.Context, db *bun.DB, table string, check Check) error {
	_, err := db.NewRaw(
		"ALTER TABLE ? DROP CONSTRAINT IF EXISTS ?",
		bun.Ident(table), bun.Ident(check.Name),
	).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop check %s: %w", check.Name, err)
	}

	_, err = db.NewRaw(
		"ALTER TABLE ? ADD CONSTRAINT ? CHECK ("+check.Expr+")",
		bun.Ident(table), bun.Ident(check.Name),
	).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add check %s: %w", check.Name, err)
	}
	return nil
}
