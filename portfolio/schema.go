package portfolio

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

const ownerForeignKey = `("portfolio_user_id") REFERENCES "portfolio_users" ("id") ON DELETE CASCADE`

// CreateSchema creates the tables that do not exist yet. Projects and skills are
// removed together with their portfolio user.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []struct {
		model any
		owned bool
	}{
		{model: (*PortfolioUser)(nil)},
		{model: (*Project)(nil), owned: true},
		{model: (*Skill)(nil), owned: true},
	}

	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		if table.owned {
			q = q.ForeignKey(ownerForeignKey)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", table.model, err)
		}
	}
	return nil
}
