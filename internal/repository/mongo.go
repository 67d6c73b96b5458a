package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/rental-service/internal/domain"
)

// Collection names used by the document store.
const (
	UsersCollection    = "users"
	ListingsCollection = "listings"
	BookingsCollection = "bookings"
)

// NewMongoStore wires the MongoDB repositories onto one database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Users:    &mongoUsers{coll: db.Collection(UsersCollection)},
		Listings: &mongoListings{coll: db.Collection(ListingsCollection)},
		Bookings: &mongoBookings{coll: db.Collection(BookingsCollection)},
	}
}

// EnsureMongoIndexes creates the indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := db.Collection(ListingsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "host_id", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(BookingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "start_date", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_date", Value: -1}}},
	})
	return err
}

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d userDocument) toDomain() domain.User {
	role, _ := domain.ParseRole(d.Role)
	return domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type mongoUsers struct {
	coll *mongo.Collection
}

func (r *mongoUsers) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, userDocument{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	return translateMongoError(err)
}

func (r *mongoUsers) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"password":   user.PasswordHash,
		"role":       string(user.Role),
		"updated_at": user.UpdatedAt,
	}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUsers) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	user := doc.toDomain()
	return &user, nil
}

func (r *mongoUsers) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	ids = uniqueIDs(ids)
	result := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	users, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

func (r *mongoUsers) List(ctx context.Context) ([]domain.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *mongoUsers) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.User, error) {
	if opts == nil {
		opts = options.Find()
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toDomain())
	}
	return users, nil
}

func (r *mongoUsers) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id)
}

type listingDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Location    string    `bson:"location"`
	Price       float64   `bson:"price"`
	Images      []string  `bson:"images"`
	HostID      string    `bson:"host_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d listingDocument) toDomain() domain.Listing {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return domain.Listing{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Price:       d.Price,
		Images:      images,
		HostID:      d.HostID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type mongoListings struct {
	coll *mongo.Collection
}

func (r *mongoListings) Create(ctx context.Context, listing *domain.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}
	now := time.Now().UTC()
	listing.CreatedAt, listing.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, listingDocument{
		ID:          listing.ID,
		Title:       listing.Title,
		Description: listing.Description,
		Location:    listing.Location,
		Price:       listing.Price,
		Images:      listing.Images,
		HostID:      listing.HostID,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	})
	return translateMongoError(err)
}

// Update never touches host_id.
func (r *mongoListings) Update(ctx context.Context, listing *domain.Listing) error {
	if listing.Images == nil {
		listing.Images = []string{}
	}
	listing.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": listing.ID}, bson.M{"$set": bson.M{
		"title":       listing.Title,
		"description": listing.Description,
		"location":    listing.Location,
		"price":       listing.Price,
		"images":      listing.Images,
		"updated_at":  listing.UpdatedAt,
	}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoListings) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var doc listingDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	listing := doc.toDomain()
	return &listing, nil
}

func (r *mongoListings) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Listing, error) {
	ids = uniqueIDs(ids)
	result := make(map[string]*domain.Listing, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	listings, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for i := range listings {
		result[listings[i].ID] = &listings[i]
	}
	return result, nil
}

func (r *mongoListings) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	query := bson.M{}
	if filter.HostID != nil {
		query["host_id"] = *filter.HostID
	}
	if filter.Location != nil && strings.TrimSpace(*filter.Location) != "" {
		query["location"] = bson.M{"$regex": primitive.Regex{
			Pattern: regexp.QuoteMeta(strings.TrimSpace(*filter.Location)),
			Options: "i",
		}}
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return r.find(ctx, query)
}

func (r *mongoListings) find(ctx context.Context, filter bson.M) ([]domain.Listing, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	listings := make([]domain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, doc.toDomain())
	}
	return listings, nil
}

func (r *mongoListings) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id)
}

type bookingDocument struct {
	ID        string    `bson:"_id"`
	ListingID string    `bson:"listing_id"`
	UserID    string    `bson:"user_id"`
	StartDate time.Time `bson:"start_date"`
	EndDate   time.Time `bson:"end_date"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d bookingDocument) toDomain() domain.Booking {
	return domain.Booking{
		ID:        d.ID,
		ListingID: d.ListingID,
		UserID:    d.UserID,
		StartDate: domain.TruncateDate(d.StartDate),
		EndDate:   domain.TruncateDate(d.EndDate),
		CreatedAt: d.CreatedAt,
	}
}

// mongoBookings relies on the service-level booking lock for check-and-insert.
type mongoBookings struct {
	coll *mongo.Collection
}

func (r *mongoBookings) Create(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, bookingDocument{
		ID:        booking.ID,
		ListingID: booking.ListingID,
		UserID:    booking.UserID,
		StartDate: booking.StartDate,
		EndDate:   booking.EndDate,
		CreatedAt: booking.CreatedAt,
	})
	return translateMongoError(err)
}

func (r *mongoBookings) FindOverlapping(ctx context.Context, listingID string, dates domain.DateRange) (*domain.Booking, error) {
	filter := bson.M{
		"listing_id": listingID,
		"start_date": bson.M{"$lte": dates.End},
		"end_date":   bson.M{"$gte": dates.Start},
	}
	var doc bookingDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	booking := doc.toDomain()
	return &booking, nil
}

func (r *mongoBookings) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookings) List(ctx context.Context) ([]domain.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoBookings) find(ctx context.Context, filter bson.M) ([]domain.Booking, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	bookings := make([]domain.Booking, 0, len(docs))
	for _, doc := range docs {
		bookings = append(bookings, doc.toDomain())
	}
	return bookings, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func translateMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
