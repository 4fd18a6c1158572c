// Package portfolio holds the SkillSnap models and their bun repositories.
//
// Three resources are stored: portfolio users, and the projects and skills that
// belong to them. Deleting a portfolio user removes its projects and skills.
//
//	db := bun.NewDB(sqldb, sqlitedialect.New())
//	if err := portfolio.CreateSchema(ctx, db); err != nil {
//		return err
//	}
//	projects := portfolio.NewProjectRepository(db)
//	page, err := projects.ListPage(ctx, 1, 20)
//
// Repositories return go-errors values: not_found for unknown ids, validation for
// invalid models or dangling references and internal for everything else.
package portfolio
