package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
)

const collectionRoles = "roles"

// nameCollation compares role names ignoring case; the unique name index and
// name lookups both use it.
var nameCollation = &options.Collation{Locale: "en", Strength: 2}

type roleDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Permissions []string           `bson:"permissions"`
	IsActive    bool               `bson:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *roleDocument) toDomain() *domain.Role {
	perms := make([]domain.Permission, len(d.Permissions))
	for i, p := range d.Permissions {
		perms[i] = domain.Permission(p)
	}
	return &domain.Role{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Permissions: perms,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func permissionStrings(in []domain.Permission) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = string(p)
	}
	return out
}

// RoleRepository stores roles in the "roles" collection with a
// case-insensitive unique index on name.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

var _ ports.RoleRepository = (*RoleRepository)(nil)

func (r *RoleRepository) Insert(ctx context.Context, in ports.NewRole) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ts := now()
	doc := roleDocument{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		Description: in.Description,
		Permissions: permissionStrings(in.Permissions),
		IsActive:    in.IsActive,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate("insert role", "name", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate("find roles", "name", err)
	}
	var docs []roleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate("decode roles", "name", err)
	}

	out := make([]*domain.Role, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ports.ErrNoDocument
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"name": name}, options.FindOne().SetCollation(nameCollation))
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roleDocument
	if err := r.col.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, translate("find role", "name", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) UpdateByID(ctx context.Context, id string, patch ports.RolePatch) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ports.ErrNoDocument
	}

	set := bson.M{"updatedAt": now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Permissions != nil {
		set["permissions"] = permissionStrings(*patch.Permissions)
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roleDocument
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translate("update role", "name", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, translate("delete role", "name", err)
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates the case-insensitive unique name index on the roles
// collection.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("name_ci_unique").
			SetUnique(true).
			SetCollation(nameCollation),
	})
	return err
}
