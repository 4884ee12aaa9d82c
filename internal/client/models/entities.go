package models

import (
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/shopspring/decimal"
)

// Default category ids. They are fixed so that every device seeds the same
// rows and sync never duplicates them.
const (
	TypeLentID     = "lent"
	TypeBorrowedID = "borrowed"
	TypeUnknownID  = "unknown"
)

type User struct {
	ID        string
	Name      string
	Email     string
	PhotoURL  string
	IsOffline bool
	IsDeleted bool
	CreatedAt int64
	UpdatedAt int64
}

// Contact is a counterparty. OwnerID is the user whose ledger it belongs to.
type Contact struct {
	ID        string
	OwnerID   string
	Name      string
	Phone     string
	IsDeleted bool
	CreatedAt int64
	UpdatedAt int64
}

// Type is a record category such as "Lent" or "Borrowed". Categories are
// shared reference data and have no owner.
type Type struct {
	ID        string
	Name      string
	IsDeleted bool
	CreatedAt int64
	UpdatedAt int64
}

// Record is one lend/borrow transaction. ContactID and TypeID are soft
// references; a dangling TypeID reads as the Unknown category.
type Record struct {
	ID          string
	OwnerID     string
	ContactID   string
	TypeID      string
	Amount      decimal.Decimal
	Date        int64
	IsComplete  bool
	Description string
	IsDeleted   bool
	CreatedAt   int64
	UpdatedAt   int64
}

func (u *User) GetID() string       { return u.ID }
func (u *User) Deleted() bool       { return u.IsDeleted }
func (u *User) GetCreatedAt() int64 { return u.CreatedAt }
func (u *User) GetUpdatedAt() int64 { return u.UpdatedAt }

func (c *Contact) GetID() string       { return c.ID }
func (c *Contact) Deleted() bool       { return c.IsDeleted }
func (c *Contact) GetCreatedAt() int64 { return c.CreatedAt }
func (c *Contact) GetUpdatedAt() int64 { return c.UpdatedAt }

func (t *Type) GetID() string       { return t.ID }
func (t *Type) Deleted() bool       { return t.IsDeleted }
func (t *Type) GetCreatedAt() int64 { return t.CreatedAt }
func (t *Type) GetUpdatedAt() int64 { return t.UpdatedAt }

func (r *Record) GetID() string       { return r.ID }
func (r *Record) Deleted() bool       { return r.IsDeleted }
func (r *Record) GetCreatedAt() int64 { return r.CreatedAt }
func (r *Record) GetUpdatedAt() int64 { return r.UpdatedAt }

// UnknownType is what a dangling category reference resolves to.
func UnknownType() *Type {
	return &Type{ID: TypeUnknownID, Name: common.DefaultCategoryName}
}
