package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/user-orders-service/internal/domain"
	apperrors "github.com/spec-kit/user-orders-service/pkg/util/errorutil"
)

// UserStore defines persistence access for user records and their orders.
type UserStore interface {
	Exists(ctx context.Context, userID int64) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeUserID int64) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	ListAll(ctx context.Context) ([]domain.UserSummary, error)
	GetByID(ctx context.Context, userID int64) (*domain.UserDetail, error)
	UpdateByID(ctx context.Context, userID int64, patch domain.UserPatch) (*domain.User, error)
	SoftDelete(ctx context.Context, userID int64) error
	AppendOrder(ctx context.Context, userID int64, order domain.Order) (domain.OrderAppendResult, error)
	OrdersByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
	OrderTotalByUserID(ctx context.Context, userID int64) (*decimal.Decimal, error)
}

// Persisted representation. Prices are stored as Decimal128 so the
// aggregation arithmetic stays exact.
type fullNameDoc struct {
	FirstName string `bson:"firstName"`
	LastName  string `bson:"lastName"`
}

type addressDoc struct {
	Street  string `bson:"street"`
	City    string `bson:"city"`
	Country string `bson:"country"`
}

// Quantity is kept as int64 so values above 32 bits survive the round trip.
type orderDoc struct {
	ProductName string               `bson:"productName"`
	Quantity    int64                `bson:"quantity"`
	Price       primitive.Decimal128 `bson:"price"`
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"userId"`
	Username  string             `bson:"username"`
	FullName  fullNameDoc        `bson:"fullName"`
	Age       int                `bson:"age"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Address   addressDoc         `bson:"address"`
	IsDeleted bool               `bson:"isDeleted"`
	Orders    []orderDoc         `bson:"orders"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type userStore struct {
	coll *mongo.Collection
}

// NewUserStore returns a Mongo-backed implementation.
func NewUserStore(coll *mongo.Collection) UserStore {
	return &userStore{coll: coll}
}

// Exists reports whether a record with this userId is present, regardless of
// soft-delete state.
func (s *userStore) Exists(ctx context.Context, userID int64) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.D{{Key: "userId", Value: userID}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by id: %w", err)
	}
	return count > 0, nil
}

// UsernameTaken reports whether another record (excluding excludeUserID)
// already owns the username.
func (s *userStore) UsernameTaken(ctx context.Context, username string, excludeUserID int64) (bool, error) {
	filter := bson.D{
		{Key: "username", Value: username},
		{Key: "userId", Value: bson.D{{Key: "$ne", Value: excludeUserID}}},
	}
	count, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by username: %w", err)
	}
	return count > 0, nil
}

func (s *userStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	exists, err := s.Exists(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewDuplicate("User already exists", map[string]any{"userId": user.UserID})
	}

	doc, err := toUserDoc(user)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Orders == nil {
		doc.Orders = []orderDoc{}
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.NewDuplicate("User already exists", map[string]any{"userId": user.UserID})
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return fromUserDoc(doc)
}

func (s *userStore) ListAll(ctx context.Context) ([]domain.UserSummary, error) {
	projection := bson.D{
		{Key: "_id", Value: 0},
		{Key: "username", Value: 1},
		{Key: "fullName.firstName", Value: 1},
		{Key: "fullName.lastName", Value: 1},
		{Key: "age", Value: 1},
		{Key: "email", Value: 1},
		{Key: "address.street", Value: 1},
		{Key: "address.city", Value: 1},
		{Key: "address.country", Value: 1},
	}

	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []struct {
		Username string      `bson:"username"`
		FullName fullNameDoc `bson:"fullName"`
		Age      int         `bson:"age"`
		Email    string      `bson:"email"`
		Address  addressDoc  `bson:"address"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	summaries := make([]domain.UserSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, domain.UserSummary{
			Username: d.Username,
			FullName: domain.FullName{FirstName: d.FullName.FirstName, LastName: d.FullName.LastName},
			Age:      d.Age,
			Email:    d.Email,
			Address:  domain.Address{Street: d.Address.Street, City: d.Address.City, Country: d.Address.Country},
		})
	}
	return summaries, nil
}

func (s *userStore) GetByID(ctx context.Context, userID int64) (*domain.UserDetail, error) {
	projection := bson.D{
		{Key: "_id", Value: 0},
		{Key: "password", Value: 0},
		{Key: "isDeleted", Value: 0},
		{Key: "orders", Value: 0},
		{Key: "createdAt", Value: 0},
		{Key: "updatedAt", Value: 0},
	}

	var doc struct {
		UserID   int64       `bson:"userId"`
		Username string      `bson:"username"`
		FullName fullNameDoc `bson:"fullName"`
		Age      int         `bson:"age"`
		Email    string      `bson:"email"`
		Address  addressDoc  `bson:"address"`
	}
	err := s.coll.FindOne(ctx, bson.D{{Key: "userId", Value: userID}}, options.FindOne().SetProjection(projection)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &domain.UserDetail{
		UserID:   doc.UserID,
		Username: doc.Username,
		FullName: domain.FullName{FirstName: doc.FullName.FirstName, LastName: doc.FullName.LastName},
		Age:      doc.Age,
		Email:    doc.Email,
		Address:  domain.Address{Street: doc.Address.Street, City: doc.Address.City, Country: doc.Address.Country},
	}, nil
}

// UpdateByID applies a field-by-field merge: only fields present on the
// patch are written, everything else is untouched.
func (s *userStore) UpdateByID(ctx context.Context, userID int64, patch domain.UserPatch) (*domain.User, error) {
	set := bson.D{}
	if patch.UserID != nil {
		set = append(set, bson.E{Key: "userId", Value: *patch.UserID})
	}
	if patch.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *patch.Username})
	}
	if patch.FullName != nil {
		set = append(set, bson.E{Key: "fullName", Value: fullNameDoc{
			FirstName: patch.FullName.FirstName,
			LastName:  patch.FullName.LastName,
		}})
	}
	if patch.Age != nil {
		set = append(set, bson.E{Key: "age", Value: *patch.Age})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.Password != nil {
		set = append(set, bson.E{Key: "password", Value: *patch.Password})
	}
	if patch.Address != nil {
		set = append(set, bson.E{Key: "address", Value: addressDoc{
			Street:  patch.Address.Street,
			City:    patch.Address.City,
			Country: patch.Address.Country,
		}})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: time.Now().UTC()})

	var doc userDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "userId", Value: userID}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.NewDuplicate("Duplicate userId or username", nil)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return fromUserDoc(doc)
}

func (s *userStore) SoftDelete(ctx context.Context, userID int64) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "isDeleted", Value: true},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "userId", Value: userID}}, update)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}
	return nil
}

// AppendOrder adds the order with set semantics: an order that is
// structurally identical to one already present is not re-added, and the
// result reports zero modified documents.
func (s *userStore) AppendOrder(ctx context.Context, userID int64, order domain.Order) (domain.OrderAppendResult, error) {
	od, err := toOrderDoc(order)
	if err != nil {
		return domain.OrderAppendResult{}, err
	}

	update := bson.D{{Key: "$addToSet", Value: bson.D{{Key: "orders", Value: od}}}}
	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "userId", Value: userID}}, update)
	if err != nil {
		return domain.OrderAppendResult{}, fmt.Errorf("append order: %w", err)
	}
	return domain.OrderAppendResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (s *userStore) OrdersByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	pipeline := NewPipeline().
		Match(bson.D{{Key: "userId", Value: userID}}).
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "orders.productName", Value: 1},
			{Key: "orders.quantity", Value: 1},
			{Key: "orders.price", Value: 1},
		}).
		Build()

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var docs []struct {
		Orders []orderDoc `bson:"orders"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := []domain.Order{}
	for _, d := range docs {
		for _, od := range d.Orders {
			o, err := fromOrderDoc(od)
			if err != nil {
				return nil, err
			}
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// OrderTotalByUserID computes sum(quantity * price) over the user's orders.
// The arithmetic runs server-side on Decimal128 values, so monetary totals
// never pass through binary floating point. A user with no orders yields an
// empty result set and a nil total.
func (s *userStore) OrderTotalByUserID(ctx context.Context, userID int64) (*decimal.Decimal, error) {
	pipeline := NewPipeline().
		Match(bson.D{{Key: "userId", Value: userID}}).
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "orders.quantity", Value: 1},
			{Key: "orders.price", Value: 1},
		}).
		Unwind("$orders").
		Project(bson.D{
			{Key: "total", Value: bson.D{{Key: "$multiply", Value: bson.A{"$orders.quantity", "$orders.price"}}}},
		}).
		Group(nil, bson.D{
			{Key: "totalPrice", Value: bson.D{{Key: "$sum", Value: "$total"}}},
		}).
		Project(bson.D{{Key: "_id", Value: 0}}).
		Build()

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate order total: %w", err)
	}

	var docs []struct {
		TotalPrice primitive.Decimal128 `bson:"totalPrice"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode order total: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	total, err := decimal.NewFromString(docs[0].TotalPrice.String())
	if err != nil {
		return nil, fmt.Errorf("parse order total: %w", err)
	}
	return &total, nil
}

func toOrderDoc(o domain.Order) (orderDoc, error) {
	price, err := primitive.ParseDecimal128(o.Price.String())
	if err != nil {
		return orderDoc{}, fmt.Errorf("encode order price: %w", err)
	}
	return orderDoc{
		ProductName: o.ProductName,
		Quantity:    int64(o.Quantity),
		Price:       price,
	}, nil
}

func fromOrderDoc(od orderDoc) (domain.Order, error) {
	price, err := decimal.NewFromString(od.Price.String())
	if err != nil {
		return domain.Order{}, fmt.Errorf("decode order price: %w", err)
	}
	return domain.Order{
		ProductName: od.ProductName,
		Quantity:    int(od.Quantity),
		Price:       price,
	}, nil
}

func toUserDoc(u *domain.User) (userDoc, error) {
	orders := make([]orderDoc, 0, len(u.Orders))
	for _, o := range u.Orders {
		od, err := toOrderDoc(o)
		if err != nil {
			return userDoc{}, err
		}
		orders = append(orders, od)
	}
	return userDoc{
		UserID:   u.UserID,
		Username: u.Username,
		FullName: fullNameDoc{
			FirstName: u.FullName.FirstName,
			LastName:  u.FullName.LastName,
		},
		Age:      u.Age,
		Email:    u.Email,
		Password: u.Password,
		Address: addressDoc{
			Street:  u.Address.Street,
			City:    u.Address.City,
			Country: u.Address.Country,
		},
		IsDeleted: u.IsDeleted,
		Orders:    orders,
	}, nil
}

func fromUserDoc(doc userDoc) (*domain.User, error) {
	orders := make([]domain.Order, 0, len(doc.Orders))
	for _, od := range doc.Orders {
		o, err := fromOrderDoc(od)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return &domain.User{
		UserID:   doc.UserID,
		Username: doc.Username,
		FullName: domain.FullName{
			FirstName: doc.FullName.FirstName,
			LastName:  doc.FullName.LastName,
		},
		Age:      doc.Age,
		Email:    doc.Email,
		Password: doc.Password,
		Address: domain.Address{
			Street:  doc.Address.Street,
			City:    doc.Address.City,
			Country: doc.Address.Country,
		},
		IsDeleted: doc.IsDeleted,
		Orders:    orders,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
