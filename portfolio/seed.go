package portfolio

import (
	"context"

	"github.com/uptrace/bun"
)

// SampleUser is the portfolio user inserted by Seed.
func SampleUser() PortfolioUser {
	return PortfolioUser{
		Name:            "John Doe",
		Bio:             "Software developer with 10 years experience.",
		ProfileImageURL: "https://example.com/profile.jpg",
	}
}

// Seed inserts a sample portfolio user with one project and one skill in a single
// transaction. Nothing is written when any portfolio user exists; the result reports
// whether data was inserted.
func Seed(ctx context.Context, db bun.IDB) (bool, error) {
	seeded := false
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*PortfolioUser)(nil)).Exists(ctx)
		if err != nil {
			return queryError(err, "portfolio user", "seed")
		}
		if exists {
			return nil
		}

		user := SampleUser()
		if _, err := tx.NewInsert().Model(&user).Exec(ctx); err != nil {
			return queryError(err, "portfolio user", "seed")
		}

		project := &Project{
			Title:           "Project One",
			Description:     "First project",
			ImageURL:        "https://example.com/proj1.jpg",
			PortfolioUserID: user.ID,
		}
		if _, err := tx.NewInsert().Model(project).Exec(ctx); err != nil {
			return queryError(err, "project", "seed")
		}

		skill := &Skill{Name: "C#", Level: LevelExpert, PortfolioUserID: user.ID}
		if _, err := tx.NewInsert().Model(skill).Exec(ctx); err != nil {
			return queryError(err, "skill", "seed")
		}

		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}
