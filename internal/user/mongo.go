package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the MongoDB collection holding accounts.
const CollectionName = "users"

// document is the BSON shape of a user. Field names follow the
// camelCase schema already present in production data.
type document struct {
	ID                          bson.ObjectID `bson:"_id,omitempty"`
	Fullname                    string        `bson:"fullname"`
	Email                       string        `bson:"email"`
	Password                    string        `bson:"password"`
	Contact                     int64         `bson:"contact"`
	Address                     string        `bson:"address"`
	City                        string        `bson:"city"`
	Country                     string        `bson:"country"`
	ProfilePicture              string        `bson:"profilePicture"`
	Admin                       bool          `bson:"admin"`
	GoogleAuth                  bool          `bson:"googleAuth"`
	IsVerified                  bool          `bson:"isVerified"`
	LastLogin                   time.Time     `bson:"lastLogin"`
	VerificationToken           string        `bson:"verificationToken,omitempty"`
	VerificationTokenExpiresAt  *time.Time    `bson:"verificationTokenExpiresAt,omitempty"`
	ResetPasswordToken          string        `bson:"resetPasswordToken,omitempty"`
	ResetPasswordTokenExpiresAt *time.Time    `bson:"resetPasswordTokenExpiresAt,omitempty"`
	CreatedAt                   time.Time     `bson:"createdAt"`
	UpdatedAt                   time.Time     `bson:"updatedAt"`
}

// MongoStore keeps users in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore wraps the users collection of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the unique email index and the token lookup indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verificationToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return err
}

func (s *MongoStore) Create(ctx context.Context, u *User) error {
	u.applyDefaults(s.now())
	doc := toDocument(u)
	doc.ID = bson.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *MongoStore) GetByResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{
		"resetPasswordToken":          token,
		"resetPasswordTokenExpiresAt": bson.M{"$gt": now},
	})
}

func (s *MongoStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return s.setByID(ctx, id, bson.M{"lastLogin": at})
}

func (s *MongoStore) SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return s.setByID(ctx, id, bson.M{"verificationToken": token, "verificationTokenExpiresAt": expiresAt})
}

func (s *MongoStore) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return s.setByID(ctx, id, bson.M{"resetPasswordToken": token, "resetPasswordTokenExpiresAt": expiresAt})
}

func (s *MongoStore) UpdateProfile(ctx context.Context, id string, p ProfileChanges) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	set := bson.M{"updatedAt": s.now()}
	for field, v := range map[string]*string{
		"fullname":       p.Fullname,
		"address":        p.Address,
		"city":           p.City,
		"country":        p.Country,
		"profilePicture": p.ProfilePicture,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	if p.Email != nil {
		set["email"] = NormalizeEmail(*p.Email)
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
}

func (s *MongoStore) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.findOneAndUpdate(ctx,
		bson.M{"verificationToken": token, "verificationTokenExpiresAt": bson.M{"$gt": now}},
		bson.M{
			"$set":   bson.M{"isVerified": true, "updatedAt": s.now()},
			"$unset": bson.M{"verificationToken": "", "verificationTokenExpiresAt": ""},
		},
	)
}

func (s *MongoStore) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.findOneAndUpdate(ctx,
		bson.M{"resetPasswordToken": token, "resetPasswordTokenExpiresAt": bson.M{"$gt": now}},
		bson.M{
			"$set":   bson.M{"password": passwordHash, "updatedAt": s.now()},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordTokenExpiresAt": ""},
		},
	)
}

func (s *MongoStore) setByID(ctx context.Context, id string, set bson.M) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	set["updatedAt"] = s.now()
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// findOneAndUpdate applies update to the document matching filter and
// returns it as stored afterwards.
func (s *MongoStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc document
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return fromDocument(&doc), nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc document
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromDocument(&doc), nil
}

func toDocument(u *User) *document {
	return &document{
		Fullname:                    u.Fullname,
		Email:                       u.Email,
		Password:                    u.PasswordHash,
		Contact:                     u.Contact,
		Address:                     u.Address,
		City:                        u.City,
		Country:                     u.Country,
		ProfilePicture:              u.ProfilePicture,
		Admin:                       u.Admin,
		GoogleAuth:                  u.GoogleAuth,
		IsVerified:                  u.IsVerified,
		LastLogin:                   u.LastLogin,
		VerificationToken:           u.VerificationToken,
		VerificationTokenExpiresAt:  optionalTime(u.VerificationTokenExpiresAt),
		ResetPasswordToken:          u.ResetPasswordToken,
		ResetPasswordTokenExpiresAt: optionalTime(u.ResetPasswordTokenExpiresAt),
		CreatedAt:                   u.CreatedAt,
		UpdatedAt:                   u.UpdatedAt,
	}
}

func fromDocument(d *document) *User {
	return &User{
		ID:                          d.ID.Hex(),
		Fullname:                    d.Fullname,
		Email:                       d.Email,
		PasswordHash:                d.Password,
		Contact:                     d.Contact,
		Address:                     d.Address,
		City:                        d.City,
		Country:                     d.Country,
		ProfilePicture:              d.ProfilePicture,
		Admin:                       d.Admin,
		GoogleAuth:                  d.GoogleAuth,
		IsVerified:                  d.IsVerified,
		LastLogin:                   d.LastLogin,
		VerificationToken:           d.VerificationToken,
		VerificationTokenExpiresAt:  derefTime(d.VerificationTokenExpiresAt),
		ResetPasswordToken:          d.ResetPasswordToken,
		ResetPasswordTokenExpiresAt: derefTime(d.ResetPasswordTokenExpiresAt),
		CreatedAt:                   d.CreatedAt,
		UpdatedAt:                   d.UpdatedAt,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
