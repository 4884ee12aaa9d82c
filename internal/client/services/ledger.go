package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/aichopaicho/internal/client/identity"
	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/contacts"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/records"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/types"
	"github.com/dmitrijs2005/aichopaicho/internal/client/syncer"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction says which way money moved.
type Direction string

const (
	Lent     Direction = models.TypeLentID
	Borrowed Direction = models.TypeBorrowedID
)

// NewRecord is what a user enters for a lend or borrow.
type NewRecord struct {
	ContactID   string
	Direction   Direction
	Amount      decimal.Decimal
	Date        int64
	Description string
}

// RecordView is a record with its references resolved for display.
type RecordView struct {
	Record      *models.Record
	Type        *models.Type
	ContactName string
}

type LedgerService interface {
	AddContact(ctx context.Context, name, phone string) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]*models.Contact, error)
	DeleteContact(ctx context.Context, id string) error

	AddRecord(ctx context.Context, in NewRecord) (*models.Record, error)
	ListRecords(ctx context.Context) ([]RecordView, error)
	CompleteRecord(ctx context.Context, id string) error
	DeleteRecord(ctx context.Context, id string) error

	// Balance is what others owe the user minus what the user owes, over
	// open records.
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// Pusher sends one changed row to the remote store.
type Pusher interface {
	PushOne(ctx context.Context, kind models.Kind, id string) syncer.Outcome
}

type ledgerService struct {
	db     *sql.DB
	pusher Pusher
	logger logging.Logger
	now    func() int64
}

func NewLedgerService(db *sql.DB, pusher Pusher, logger logging.Logger) LedgerService {
	return &ledgerService{db: db, pusher: pusher, logger: logger, now: models.NowMillis}
}

func (s *ledgerService) owner(ctx context.Context) (string, error) {
	owner, err := identity.Owner(ctx, s.db)
	if err != nil {
		return "", err
	}
	if owner == "" {
		return "", common.ErrNoIdentity
	}
	return owner, nil
}

// bump returns the next updatedAt for a row last written at prev.
func (s *ledgerService) bump(prev int64) int64 {
	return max(s.now(), prev+1)
}

// push is best effort: the local write already succeeded.
func (s *ledgerService) push(ctx context.Context, kind models.Kind, id string) {
	out := s.pusher.PushOne(ctx, kind, id)
	if out.Status == syncer.StatusFailure {
		s.logger.Warn(ctx, "immediate push failed, will retry on next sync", "kind", kind, "id", id, "message", out.Message)
	}
}

func (s *ledgerService) AddContact(ctx context.Context, name, phone string) (*models.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: contact name is required", common.ErrInvalidArgument)
	}
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &models.Contact{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Name:      name,
		Phone:     strings.TrimSpace(phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := contacts.NewSQLiteRepository(s.db).Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	s.push(ctx, models.KindContacts, c.ID)
	return c, nil
}

func (s *ledgerService) ListContacts(ctx context.Context) ([]*models.Contact, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	return contacts.NewSQLiteRepository(s.db).GetAll(ctx, owner)
}

// liveContact returns the owner's contact unless it is missing or deleted.
func (s *ledgerService) liveContact(ctx context.Context, owner, id string) (*models.Contact, error) {
	c, err := contacts.NewSQLiteRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != owner || c.IsDeleted {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (s *ledgerService) DeleteContact(ctx context.Context, id string) error {
	owner, err := s.owner(ctx)
	if err != nil {
		return err
	}
	c, err := s.liveContact(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := contacts.NewSQLiteRepository(s.db).SoftDelete(ctx, id, s.bump(c.UpdatedAt)); err != nil {
		return err
	}
	s.push(ctx, models.KindContacts, id)
	return nil
}

func (s *ledgerService) AddRecord(ctx context.Context, in NewRecord) (*models.Record, error) {
	if in.Direction != Lent && in.Direction != Borrowed {
		return nil, fmt.Errorf("%w: direction %q", common.ErrInvalidArgument, in.Direction)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrInvalidArgument)
	}
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.liveContact(ctx, owner, in.ContactID); err != nil {
		return nil, fmt.Errorf("contact %s: %w", in.ContactID, err)
	}

	now := s.now()
	date := in.Date
	if date == 0 {
		date = now
	}
	r := &models.Record{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		ContactID:   in.ContactID,
		TypeID:      string(in.Direction),
		Amount:      in.Amount,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := records.NewSQLiteRepository(s.db).Upsert(ctx, r); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	s.push(ctx, models.KindRecords, r.ID)
	return r, nil
}

func (s *ledgerService) ListRecords(ctx context.Context) ([]RecordView, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := records.NewSQLiteRepository(s.db).GetAll(ctx, owner)
	if err != nil {
		return nil, err
	}

	tr := types.NewSQLiteRepository(s.db)
	cr := contacts.NewSQLiteRepository(s.db)
	names := make(map[string]string)

	views := make([]RecordView, 0, len(recs))
	for _, r := range recs {
		t, err := tr.ResolveType(ctx, r.TypeID)
		if err != nil {
			return nil, err
		}
		name, ok := names[r.ContactID]
		if !ok {
			c, err := cr.GetByID(ctx, r.ContactID)
			switch {
			case err == nil:
				name = c.Name
			case errors.Is(err, common.ErrorNotFound):
			default:
				return nil, err
			}
			names[r.ContactID] = name
		}
		views = append(views, RecordView{Record: r, Type: t, ContactName: name})
	}
	return views, nil
}

func (s *ledgerService) liveRecord(ctx context.Context, owner, id string) (*models.Record, error) {
	r, err := records.NewSQLiteRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.OwnerID != owner || r.IsDeleted {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (s *ledgerService) CompleteRecord(ctx context.Context, id string) error {
	owner, err := s.owner(ctx)
	if err != nil {
		return err
	}
	r, err := s.liveRecord(ctx, owner, id)
	if err != nil {
		return err
	}
	if r.IsComplete {
		return nil
	}

	r.IsComplete = true
	r.UpdatedAt = s.bump(r.UpdatedAt)
	if err := records.NewSQLiteRepository(s.db).Upsert(ctx, r); err != nil {
		return err
	}
	s.push(ctx, models.KindRecords, id)
	return nil
}

func (s *ledgerService) DeleteRecord(ctx context.Context, id string) error {
	owner, err := s.owner(ctx)
	if err != nil {
		return err
	}
	r, err := s.liveRecord(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := records.NewSQLiteRepository(s.db).SoftDelete(ctx, id, s.bump(r.UpdatedAt)); err != nil {
		return err
	}
	s.push(ctx, models.KindRecords, id)
	return nil
}

func (s *ledgerService) Balance(ctx context.Context) (decimal.Decimal, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	recs, err := records.NewSQLiteRepository(s.db).GetAll(ctx, owner)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, r := range recs {
		if r.IsComplete {
			continue
		}
		switch r.TypeID {
		case models.TypeLentID:
			total = total.Add(r.Amount)
		case models.TypeBorrowedID:
			total = total.Sub(r.Amount)
		}
	}
	return total, nil
}
