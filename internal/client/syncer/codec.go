package syncer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/contacts"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/records"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/types"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/users"
	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/shopspring/decimal"
)

// Wire field names. Booleans drop the "is" prefix on the wire.
const (
	fieldOwnerID     = "ownerId"
	fieldName        = "name"
	fieldPhone       = "phone"
	fieldEmail       = "email"
	fieldPhotoURL    = "photoUrl"
	fieldOffline     = "offline"
	fieldContactID   = "contactId"
	fieldTypeID      = "typeId"
	fieldAmount      = "amount"
	fieldDate        = "date"
	fieldComplete    = "complete"
	fieldDescription = "description"
)

// table binds one kind to its remote collection, its repository and its
// wire codec.
type table struct {
	collection string

	// rows returns what a push pass sends, tombstones included.
	rows   func(ctx context.Context, db dbx.DBTX, identity string) ([]models.Syncable, error)
	get    func(ctx context.Context, db dbx.DBTX, id string) (models.Syncable, error)
	upsert func(ctx context.Context, db dbx.DBTX, v models.Syncable) error
	encode func(v models.Syncable) docstore.Document
	// decode never fails: missing or malformed fields take defaults.
	decode func(doc docstore.Document, identity string, now int64) models.Syncable
}

func tableFor(kind models.Kind) (*table, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	return t, nil
}

var tables = map[models.Kind]*table{
	models.KindContacts: {
		collection: docstore.CollectionContacts,
		rows: func(ctx context.Context, db dbx.DBTX, identity string) ([]models.Syncable, error) {
			return syncables(contacts.NewSQLiteRepository(db).GetAllForSync(ctx, identity))
		},
		get: func(ctx context.Context, db dbx.DBTX, id string) (models.Syncable, error) {
			return contacts.NewSQLiteRepository(db).GetByID(ctx, id)
		},
		upsert: func(ctx context.Context, db dbx.DBTX, v models.Syncable) error {
			return contacts.NewSQLiteRepository(db).Upsert(ctx, v.(*models.Contact))
		},
		encode: func(v models.Syncable) docstore.Document {
			c := v.(*models.Contact)
			return withMeta(v, docstore.Document{
				fieldOwnerID: c.OwnerID,
				fieldName:    c.Name,
				fieldPhone:   c.Phone,
			})
		},
		decode: func(doc docstore.Document, identity string, now int64) models.Syncable {
			return &models.Contact{
				ID:        doc.ID(),
				OwnerID:   identity,
				Name:      doc.String(fieldName, ""),
				Phone:     doc.String(fieldPhone, ""),
				IsDeleted: doc.Bool(docstore.FieldDeleted, false),
				CreatedAt: doc.Millis(docstore.FieldCreatedAt, now),
				UpdatedAt: doc.Millis(docstore.FieldUpdatedAt, now),
			}
		},
	},
	models.KindRecords: {
		collection: docstore.CollectionRecords,
		rows: func(ctx context.Context, db dbx.DBTX, identity string) ([]models.Syncable, error) {
			return syncables(records.NewSQLiteRepository(db).GetAllForSync(ctx, identity))
		},
		get: func(ctx context.Context, db dbx.DBTX, id string) (models.Syncable, error) {
			return records.NewSQLiteRepository(db).GetByID(ctx, id)
		},
		upsert: func(ctx context.Context, db dbx.DBTX, v models.Syncable) error {
			return records.NewSQLiteRepository(db).Upsert(ctx, v.(*models.Record))
		},
		encode: func(v models.Syncable) docstore.Document {
			r := v.(*models.Record)
			return withMeta(v, docstore.Document{
				fieldOwnerID:     r.OwnerID,
				fieldContactID:   r.ContactID,
				fieldTypeID:      r.TypeID,
				fieldAmount:      r.Amount.String(),
				fieldDate:        r.Date,
				fieldComplete:    r.IsComplete,
				fieldDescription: r.Description,
			})
		},
		decode: func(doc docstore.Document, identity string, now int64) models.Syncable {
			return &models.Record{
				ID:          doc.ID(),
				OwnerID:     identity,
				ContactID:   doc.String(fieldContactID, ""),
				TypeID:      doc.String(fieldTypeID, ""),
				Amount:      amountOf(doc),
				Date:        doc.Int64(fieldDate, 0),
				IsComplete:  doc.Bool(fieldComplete, false),
				Description: doc.String(fieldDescription, ""),
				IsDeleted:   doc.Bool(docstore.FieldDeleted, false),
				CreatedAt:   doc.Millis(docstore.FieldCreatedAt, now),
				UpdatedAt:   doc.Millis(docstore.FieldUpdatedAt, now),
			}
		},
	},
	models.KindTypes: {
		collection: docstore.CollectionTypes,
		rows: func(ctx context.Context, db dbx.DBTX, _ string) ([]models.Syncable, error) {
			return syncables(types.NewSQLiteRepository(db).GetAllForSync(ctx))
		},
		get: func(ctx context.Context, db dbx.DBTX, id string) (models.Syncable, error) {
			return types.NewSQLiteRepository(db).GetByID(ctx, id)
		},
		upsert: func(ctx context.Context, db dbx.DBTX, v models.Syncable) error {
			return types.NewSQLiteRepository(db).Upsert(ctx, v.(*models.Type))
		},
		encode: func(v models.Syncable) docstore.Document {
			return withMeta(v, docstore.Document{fieldName: v.(*models.Type).Name})
		},
		decode: func(doc docstore.Document, _ string, now int64) models.Syncable {
			return &models.Type{
				ID:        doc.ID(),
				Name:      doc.String(fieldName, ""),
				IsDeleted: doc.Bool(docstore.FieldDeleted, false),
				CreatedAt: doc.Millis(docstore.FieldCreatedAt, now),
				UpdatedAt: doc.Millis(docstore.FieldUpdatedAt, now),
			}
		},
	},
	// The signed-in user's own row is their profile document.
	models.KindUsers: {
		collection: docstore.CollectionProfile,
		rows: func(ctx context.Context, db dbx.DBTX, identity string) ([]models.Syncable, error) {
			u, err := users.NewSQLiteRepository(db).GetByID(ctx, identity)
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, err
			}
			return []models.Syncable{u}, nil
		},
		get: func(ctx context.Context, db dbx.DBTX, id string) (models.Syncable, error) {
			return users.NewSQLiteRepository(db).GetByID(ctx, id)
		},
		upsert: func(ctx context.Context, db dbx.DBTX, v models.Syncable) error {
			return users.NewSQLiteRepository(db).Upsert(ctx, v.(*models.User))
		},
		encode: func(v models.Syncable) docstore.Document {
			u := v.(*models.User)
			return withMeta(v, docstore.Document{
				fieldName:     u.Name,
				fieldEmail:    u.Email,
				fieldPhotoURL: u.PhotoURL,
				fieldOffline:  u.IsOffline,
			})
		},
		decode: func(doc docstore.Document, _ string, now int64) models.Syncable {
			return &models.User{
				ID:        doc.ID(),
				Name:      doc.String(fieldName, ""),
				Email:     doc.String(fieldEmail, ""),
				PhotoURL:  doc.String(fieldPhotoURL, ""),
				IsOffline: doc.Bool(fieldOffline, false),
				IsDeleted: doc.Bool(docstore.FieldDeleted, false),
				CreatedAt: doc.Millis(docstore.FieldCreatedAt, now),
				UpdatedAt: doc.Millis(docstore.FieldUpdatedAt, now),
			}
		},
	},
}

func withMeta(v models.Syncable, d docstore.Document) docstore.Document {
	d[docstore.FieldID] = v.GetID()
	d[docstore.FieldDeleted] = v.Deleted()
	d[docstore.FieldCreatedAt] = v.GetCreatedAt()
	d[docstore.FieldUpdatedAt] = v.GetUpdatedAt()
	return d
}

// amountOf accepts the decimal string this client writes as well as a bare
// number written by older clients. Anything else reads as zero.
func amountOf(doc docstore.Document) decimal.Decimal {
	s := doc.String(fieldAmount, "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func syncables[T models.Syncable](rows []T, err error) ([]models.Syncable, error) {
	if err != nil {
		return nil, err
	}
	out := make([]models.Syncable, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}
