package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

const collectionRoles = "role_records"

// RoleRepository implements ports.RoleRepository on MongoDB. It is the sole
// writer of the role collection.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

type roleDoc struct {
	RemoteID        int               `bson:"remote_id"`
	Username        string            `bson:"username"`
	CustomFields    map[string]string `bson:"custom_fields,omitempty"`
	Role            string            `bson:"role"`
	LastLogin       time.Time         `bson:"last_login"`
	ConversionCount int               `bson:"conversion_count"`
	CreatedAt       time.Time         `bson:"created_at"`
}

func (d roleDoc) toDomain() *domain.RoleRecord {
	return &domain.RoleRecord{
		RemoteID:        d.RemoteID,
		Username:        d.Username,
		CustomFields:    d.CustomFields,
		Role:            d.Role,
		LastLogin:       d.LastLogin,
		ConversionCount: d.ConversionCount,
		CreatedAt:       d.CreatedAt,
	}
}

func (r *RoleRepository) FindByRemoteID(ctx context.Context, remoteID int) (*domain.RoleRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roleDoc
	err := r.col.FindOne(ctx, bson.M{"remote_id": remoteID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find role record: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count role records: %w", err)
	}
	return n, nil
}

func (r *RoleRepository) Create(ctx context.Context, rec *domain.RoleRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := roleDoc{
		RemoteID:        rec.RemoteID,
		Username:        rec.Username,
		CustomFields:    rec.CustomFields,
		Role:            rec.Role,
		LastLogin:       rec.LastLogin,
		ConversionCount: rec.ConversionCount,
		CreatedAt:       rec.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert role record: %w", err)
	}
	return nil
}

func (r *RoleRepository) UpdateLogin(ctx context.Context, remoteID int, lastLogin time.Time, customFields map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"last_login": lastLogin}
	if customFields != nil {
		set["custom_fields"] = customFields
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"remote_id": remoteID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update login: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) UpdateRole(ctx context.Context, remoteID int, role string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"remote_id": remoteID}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) IncrementConversions(ctx context.Context, remoteID int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"remote_id": remoteID}, bson.M{"$inc": bson.M{"conversion_count": 1}})
	if err != nil {
		return fmt.Errorf("increment conversions: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.RoleRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list role records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*domain.RoleRecord
	for cursor.Next(ctx) {
		var doc roleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode role record: %w", err)
		}
		records = append(records, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list role records: %w", err)
	}
	return records, nil
}

// EnsureIndexes creates the unique remote-id index backing the one-record-
// per-identity invariant.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "remote_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
