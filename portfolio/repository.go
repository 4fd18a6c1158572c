package portfolio

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Page bounds accepted by ListPage.
const (
	MaxPage     = 1_000_000
	MaxPageSize = 100
)

// Repository is the data source of one resource.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	ListPage(ctx context.Context, page, pageSize int) ([]T, error)
	GetByID(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// BunRepository implements Repository with bun.
type BunRepository[T any, P Record[T]] struct {
	db      bun.IDB
	name    string
	order   []string
	columns []string
}

var (
	_ Repository[Project]       = (*BunRepository[Project, *Project])(nil)
	_ Repository[Skill]         = (*BunRepository[Skill, *Skill])(nil)
	_ Repository[PortfolioUser] = (*BunRepository[PortfolioUser, *PortfolioUser])(nil)
)

// NewProjectRepository lists projects newest first.
func NewProjectRepository(db bun.IDB) *BunRepository[Project, *Project] {
	return &BunRepository[Project, *Project]{
		db:      db,
		name:    "project",
		order:   []string{"p.created_date DESC", "p.id DESC"},
		columns: []string{"title", "description", "image_url", "updated_date"},
	}
}

// NewSkillRepository lists skills by name.
func NewSkillRepository(db bun.IDB) *BunRepository[Skill, *Skill] {
	return &BunRepository[Skill, *Skill]{
		db:      db,
		name:    "skill",
		order:   []string{"s.name ASC", "s.id ASC"},
		columns: []string{"name", "level"},
	}
}

// NewPortfolioUserRepository lists portfolio users by id.
func NewPortfolioUserRepository(db bun.IDB) *BunRepository[PortfolioUser, *PortfolioUser] {
	return &BunRepository[PortfolioUser, *PortfolioUser]{
		db:      db,
		name:    "portfolio user",
		order:   []string{"pu.id ASC"},
		columns: []string{"name", "bio", "profile_image_url"},
	}
}

func (r *BunRepository[T, P]) List(ctx context.Context) ([]T, error) {
	records := make([]T, 0)
	if err := r.db.NewSelect().Model(&records).Order(r.order...).Scan(ctx); err != nil {
		return nil, queryError(err, r.name, "list")
	}
	return records, nil
}

func (r *BunRepository[T, P]) ListPage(ctx context.Context, page, pageSize int) ([]T, error) {
	if page < 1 || page > MaxPage || pageSize < 1 || pageSize > MaxPageSize {
		return nil, goerrors.New(
			fmt.Sprintf("page must be in 1..%d and pageSize in 1..%d", MaxPage, MaxPageSize),
			goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("INVALID_PAGE")
	}

	records := make([]T, 0, min(pageSize, 64))
	err := r.db.NewSelect().
		Model(&records).
		Order(r.order...).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(ctx)
	if err != nil {
		return nil, queryError(err, r.name, "list page")
	}
	return records, nil
}

func (r *BunRepository[T, P]) GetByID(ctx context.Context, id int64) (T, error) {
	var zero T
	record := P(new(T))
	record.SetID(id)

	if err := r.db.NewSelect().Model(record).WherePK().Scan(ctx); err != nil {
		if isNoRows(err) {
			return zero, NotFound(r.name, id)
		}
		return zero, queryError(err, r.name, "get")
	}
	return *record, nil
}

func (r *BunRepository[T, P]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	p := P(&record)
	if err := p.Validate(); err != nil {
		return zero, ValidationError(err)
	}

	if _, err := r.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return zero, queryError(err, r.name, "create")
	}
	return record, nil
}

// Update writes the mutable columns of record and returns the stored row.
func (r *BunRepository[T, P]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	p := P(&record)
	if err := p.Validate(); err != nil {
		return zero, ValidationError(err)
	}

	res, err := r.db.NewUpdate().Model(p).Column(r.columns...).WherePK().Exec(ctx)
	if err != nil {
		return zero, queryError(err, r.name, "update")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return zero, NotFound(r.name, p.GetID())
	}
	return r.GetByID(ctx, p.GetID())
}

func (r *BunRepository[T, P]) Delete(ctx context.Context, id int64) error {
	record := P(new(T))
	record.SetID(id)

	res, err := r.db.NewDelete().Model(record).WherePK().Exec(ctx)
	if err != nil {
		return queryError(err, r.name, "delete")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NotFound(r.name, id)
	}
	return nil
}

// Count returns the number of stored rows.
func (r *BunRepository[T, P]) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model(P(new(T))).Count(ctx)
	if err != nil {
		return 0, queryError(err, r.name, "count")
	}
	return n, nil
}
