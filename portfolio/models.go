package portfolio

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

// Skill levels accepted by Skill.Validate.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
)

// Entity is implemented by every persisted model.
type Entity interface {
	GetID() int64
	SetID(id int64)
	Validate() error
}

// Record constrains a type parameter to a pointer to a model.
type Record[T any] interface {
	*T
	Entity
}

type PortfolioUser struct {
	bun.BaseModel `bun:"table:portfolio_users,alias:pu" json:"-"`

	ID              int64  `bun:"id,pk,autoincrement" json:"id"`
	Name            string `bun:"name,notnull" json:"name"`
	Bio             string `bun:"bio" json:"bio"`
	ProfileImageURL string `bun:"profile_image_url" json:"profileImageUrl"`
}

func (u *PortfolioUser) GetID() int64   { return u.ID }
func (u *PortfolioUser) SetID(id int64) { u.ID = id }

func (u *PortfolioUser) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&u.Bio, validation.Length(0, 2000)),
		validation.Field(&u.ProfileImageURL, is.URL),
	)
}

type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p" json:"-"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	Title           string    `bun:"title,notnull" json:"title"`
	Description     string    `bun:"description" json:"description"`
	ImageURL        string    `bun:"image_url" json:"imageUrl"`
	CreatedDate     time.Time `bun:"created_date,notnull" json:"createdDate"`
	UpdatedDate     time.Time `bun:"updated_date,nullzero" json:"updatedDate"`
	PortfolioUserID int64     `bun:"portfolio_user_id,notnull" json:"portfolioUserId"`
}

var _ bun.BeforeAppendModelHook = (*Project)(nil)

func (p *Project) GetID() int64   { return p.ID }
func (p *Project) SetID(id int64) { p.ID = id }

func (p *Project) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Length(0, 2000)),
		validation.Field(&p.ImageURL, is.URL),
		validation.Field(&p.PortfolioUserID, validation.Required, validation.Min(int64(1))),
	)
}

// BeforeAppendModel stamps creation and update times.
func (p *Project) BeforeAppendModel(_ context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.CreatedDate.IsZero() {
			p.CreatedDate = now
		}
		p.UpdatedDate = now
	case *bun.UpdateQuery:
		p.UpdatedDate = now
	}
	return nil
}

type Skill struct {
	bun.BaseModel `bun:"table:skills,alias:s" json:"-"`

	ID              int64  `bun:"id,pk,autoincrement" json:"id"`
	Name            string `bun:"name,notnull" json:"name"`
	Level           string `bun:"level,notnull" json:"level"`
	PortfolioUserID int64  `bun:"portfolio_user_id,notnull" json:"portfolioUserId"`
}

func (s *Skill) GetID() int64   { return s.ID }
func (s *Skill) SetID(id int64) { s.ID = id }

func (s *Skill) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&s.Level, validation.Required, validation.In(LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert)),
		validation.Field(&s.PortfolioUserID, validation.Required, validation.Min(int64(1))),
	)
}
