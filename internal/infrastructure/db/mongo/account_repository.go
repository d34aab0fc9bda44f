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

const collectionUsers = "users"

// accountDocument is the stored user shape. Password is write-only: every
// read pipeline projects it out.
type accountDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FirstName   string             `bson:"firstName"`
	LastName    string             `bson:"lastName"`
	Email       string             `bson:"email"`
	Password    string             `bson:"password,omitempty"`
	Phone       string             `bson:"phone,omitempty"`
	DateOfBirth *time.Time         `bson:"dateOfBirth,omitempty"`
	Role        primitive.ObjectID `bson:"role"`
	IsActive    bool               `bson:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`

	// RoleDocs is filled by the $lookup stage; empty for a dangling reference.
	RoleDocs []roleDocument `bson:"roleDocs,omitempty"`
}

func (d *accountDocument) toDomain() *domain.Account {
	a := &domain.Account{
		ID:        d.ID.Hex(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Role:      domain.RoleRef{ID: d.Role.Hex()},
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.DateOfBirth != nil {
		dob := d.DateOfBirth.UTC()
		a.DateOfBirth = &dob
	}
	if len(d.RoleDocs) > 0 {
		a.Role = d.RoleDocs[0].toDomain().Ref()
	}
	return a
}

// AccountRepository stores accounts in the "users" collection with a unique
// index on email. Reads populate the role through $lookup.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionUsers)}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

// populated returns the read pipeline for documents matching filter.
func populated(filter bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionRoles},
			{Key: "localField", Value: "role"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "roleDocs"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "password", Value: 0}}}},
	}
}

func (r *AccountRepository) find(ctx context.Context, op string, filter bson.M) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, populated(filter))
	if err != nil {
		return nil, translate(op, "email", err)
	}
	var docs []accountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(op, "email", err)
	}

	out := make([]*domain.Account, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *AccountRepository) findOne(ctx context.Context, op string, filter bson.M) (*domain.Account, error) {
	accounts, err := r.find(ctx, op, filter)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ports.ErrNoDocument
	}
	return accounts[0], nil
}

func (r *AccountRepository) Insert(ctx context.Context, in ports.NewAccount) (*domain.Account, error) {
	roleID, err := primitive.ObjectIDFromHex(in.RoleID)
	if err != nil {
		return nil, domain.NewValidationError("role", "must be a 24-character hexadecimal id")
	}

	ts := now()
	doc := accountDocument{
		ID:          primitive.NewObjectID(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Password:    in.PasswordHash,
		Phone:       in.Phone,
		DateOfBirth: in.DateOfBirth,
		Role:        roleID,
		IsActive:    in.IsActive,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	insertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if _, err := r.col.InsertOne(insertCtx, doc); err != nil {
		return nil, translate("insert user", "email", err)
	}

	// fetch back to populate the role
	return r.findOne(ctx, "find user", bson.M{"_id": doc.ID})
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	return r.find(ctx, "find users", bson.M{})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ports.ErrNoDocument
	}
	return r.findOne(ctx, "find user", bson.M{"_id": oid})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "find user", bson.M{"email": email})
}

func (r *AccountRepository) UpdateByID(ctx context.Context, id string, patch ports.AccountPatch) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ports.ErrNoDocument
	}

	set := bson.M{"updatedAt": now()}
	unset := bson.M{}
	if patch.FirstName != nil {
		set["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["lastName"] = *patch.LastName
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["password"] = *patch.PasswordHash
	}
	if patch.Phone != nil {
		if *patch.Phone == "" {
			unset["phone"] = ""
		} else {
			set["phone"] = *patch.Phone
		}
	}
	switch {
	case patch.ClearDateOfBirth:
		unset["dateOfBirth"] = ""
	case patch.DateOfBirth != nil:
		set["dateOfBirth"] = *patch.DateOfBirth
	}
	if patch.RoleID != nil {
		roleID, err := primitive.ObjectIDFromHex(*patch.RoleID)
		if err != nil {
			return nil, domain.NewValidationError("role", "must be a 24-character hexadecimal id")
		}
		set["role"] = roleID
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	updateCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	res, err := r.col.UpdateOne(updateCtx, bson.M{"_id": oid}, update)
	if err != nil {
		return nil, translate("update user", "email", err)
	}
	if res.MatchedCount == 0 {
		return nil, ports.ErrNoDocument
	}

	return r.findOne(ctx, "find user", bson.M{"_id": oid})
}

func (r *AccountRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, translate("delete user", "email", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *AccountRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"role": oid})
	if err != nil {
		return 0, translate("count users", "email", err)
	}
	return n, nil
}

// EnsureIndexes creates the unique email index and the role lookup index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return err
}
