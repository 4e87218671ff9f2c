package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
)

const (
	usersCollection        = "users"
	productsCollection     = "products"
	securityLogsCollection = "security_logs"
)

// EnsureMongoIndexes creates the indexes the repositories rely on. The unique
// email index is the final guard behind the email uniqueness checks.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(securityLogsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

type userDocument struct {
	ID            string     `bson:"_id"`
	Name          string     `bson:"name"`
	Surname       string     `bson:"surname"`
	Email         string     `bson:"email"`
	PasswordHash  string     `bson:"password_hash"`
	Role          string     `bson:"role"`
	IsActive      bool       `bson:"is_active"`
	PendingCode   *string    `bson:"pending_code,omitempty"`
	PendingCodeAt *time.Time `bson:"pending_code_at,omitempty"`
	PendingEmail  *string    `bson:"pending_email,omitempty"`
	ProfileImage  *string    `bson:"profile_image,omitempty"`
	Phone         *string    `bson:"phone,omitempty"`
	Address       *string    `bson:"address,omitempty"`
	Age           *int       `bson:"age,omitempty"`
	RegisteredAt  time.Time  `bson:"registered_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

func newUserDocument(u *entity.User) userDocument {
	return userDocument{
		ID:            u.ID.String(),
		Name:          u.Name,
		Surname:       u.Surname,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		Role:          string(u.Role),
		IsActive:      u.IsActive,
		PendingCode:   u.PendingCode,
		PendingCodeAt: u.PendingCodeAt,
		PendingEmail:  u.PendingEmail,
		ProfileImage:  u.ProfileImage,
		Phone:         u.Phone,
		Address:       u.Address,
		Age:           u.Age,
		RegisteredAt:  u.RegisteredAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d userDocument) toEntity() (*entity.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &entity.User{
		ID:            id,
		Name:          d.Name,
		Surname:       d.Surname,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		Role:          entity.UserRole(d.Role),
		IsActive:      d.IsActive,
		PendingCode:   d.PendingCode,
		PendingCodeAt: d.PendingCodeAt,
		PendingEmail:  d.PendingEmail,
		ProfileImage:  d.ProfileImage,
		Phone:         d.Phone,
		Address:       d.Address,
		Age:           d.Age,
		RegisteredAt:  d.RegisteredAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = now
	}
	user.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, newUserDocument(user))
	return translateError(err)
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity()
}

func (r *mongoUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID.String()}, newUserDocument(user))
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]entity.User, 0, len(docs))
	for _, doc := range docs {
		user, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

type productDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Details      string    `bson:"details"`
	Price        float64   `bson:"price"`
	ProductImage *string   `bson:"product_image,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d productDocument) toEntity() (*entity.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &entity.Product{
		ID:           id,
		Name:         d.Name,
		Details:      d.Details,
		Price:        d.Price,
		ProductImage: d.ProductImage,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

type mongoProductRepository struct {
	coll *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{coll: db.Collection(productsCollection)}
}

func (r *mongoProductRepository) document(p *entity.Product) productDocument {
	return productDocument{
		ID:           p.ID.String(),
		Name:         p.Name,
		Details:      p.Details,
		Price:        p.Price,
		ProductImage: p.ProductImage,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *mongoProductRepository) Create(ctx context.Context, product *entity.Product) error {
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, r.document(product))
	return err
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity()
}

func (r *mongoProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": product.ID.String()}, r.document(product))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) List(ctx context.Context) ([]entity.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]entity.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}

type securityLogDocument struct {
	ID        string         `bson:"_id"`
	UserID    *string        `bson:"user_id,omitempty"`
	IPAddress *string        `bson:"ip_address,omitempty"`
	Action    string         `bson:"action"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

type mongoSecurityLogRepository struct {
	coll *mongo.Collection
}

func NewMongoSecurityLogRepository(db *mongo.Database) SecurityLogRepository {
	return &mongoSecurityLogRepository{coll: db.Collection(securityLogsCollection)}
}

func (r *mongoSecurityLogRepository) Log(ctx context.Context, log *entity.SecurityLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	doc := securityLogDocument{
		ID:        log.ID.String(),
		IPAddress: log.IPAddress,
		Action:    string(log.Action),
		CreatedAt: log.CreatedAt,
	}
	if log.UserID != nil {
		id := log.UserID.String()
		doc.UserID = &id
	}
	if len(log.Metadata) > 0 {
		if err := json.Unmarshal(log.Metadata, &doc.Metadata); err != nil {
			return err
		}
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *mongoSecurityLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.SecurityLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, err
	}
	var docs []securityLogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	logs := make([]entity.SecurityLog, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, err
		}
		entry := entity.SecurityLog{
			ID:        id,
			UserID:    &userID,
			IPAddress: doc.IPAddress,
			Action:    entity.SecurityAction(doc.Action),
			CreatedAt: doc.CreatedAt,
		}
		if len(doc.Metadata) > 0 {
			raw, err := json.Marshal(doc.Metadata)
			if err != nil {
				return nil, err
			}
			entry.Metadata = datatypes.JSON(raw)
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
