// Package repositorycache provides cached decorators for portfolio repositories.
//
// # Overview
//
// CachedRepository wraps a portfolio.Repository and routes its reads through a
// cache.Service. Writes are delegated to the base repository and, once they
// succeed, every cached key of the resource is invalidated before the call
// returns.
//
// # Basic Usage
//
//	base := portfolio.NewProjectRepository(db)
//	projects, err := repositorycache.New[portfolio.Project](base, service, invalidator)
//	if err != nil {
//		return err
//	}
//
//	page, err := projects.ListPage(ctx, 1, 20) // key "projects_page1_size20"
//	_, err = projects.Create(ctx, project)      // drops every "projects" key
//
// # Keys
//
// The resource name defaults to the plural kebab-case form of the model type
// (Project becomes "projects", PortfolioUser becomes "portfolio-users") and can be
// overridden with WithResource. Keys follow the cache package scheme:
//
//   - List:     CollectionKey, e.g. "skills"
//   - ListPage: PageKey, e.g. "projects_page1_size20"
//   - GetByID:  ItemKey, e.g. "projects_id_7"
//
// # Invalidation
//
// Invalidation is resource-wide. A write to one project drops every cached page and
// item of "projects". Resources whose reads depend on the written rows are named with
// WithDependents; deleting a portfolio user cascades to its projects and skills, so the
// users repository lists both.
//
// # Error Handling
//
// Errors from the base repository are returned unchanged and never cached. An
// invalidation failure after a successful write is returned to the caller as an
// internal go-errors error; the write itself is not rolled back.
package repositorycache
