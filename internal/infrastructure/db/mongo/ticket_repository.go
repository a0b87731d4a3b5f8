package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

// TicketRepository implements ports.TicketRepository using MongoDB.
//
// Comment appends and vote toggles are single document updates ($push and an
// aggregation-pipeline $set respectively) so concurrent writers against the
// same ticket can never clobber each other.
type TicketRepository struct {
	coll *mongo.Collection
}

func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{coll: db.Collection(collectionTickets)}
}

// References are stored as hex strings rather than ObjectIDs: the referenced
// documents may be deleted out from under a ticket (dangling category refs are
// accepted behaviour), so nothing ever joins on them server-side.
type ticketDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Subject     string             `bson:"subject"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	CreatedBy   string             `bson:"created_by"`
	AssignedTo  string             `bson:"assigned_to,omitempty"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	Comments    []domain.Comment   `bson:"comments"`
	Attachments []string           `bson:"attachments,omitempty"`
	Upvotes     []string           `bson:"upvotes"`
	Downvotes   []string           `bson:"downvotes"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d ticketDoc) toDomain() *domain.Ticket {
	t := &domain.Ticket{
		ID:           d.ID.Hex(),
		Subject:      d.Subject,
		Description:  d.Description,
		CategoryID:   d.Category,
		CreatedByID:  d.CreatedBy,
		AssignedToID: d.AssignedTo,
		Status:       domain.TicketStatus(d.Status),
		Priority:     domain.TicketPriority(d.Priority),
		Comments:     d.Comments,
		Attachments:  d.Attachments,
		Upvotes:      d.Upvotes,
		Downvotes:    d.Downvotes,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}
	if t.Upvotes == nil {
		t.Upvotes = []string{}
	}
	if t.Downvotes == nil {
		t.Downvotes = []string{}
	}
	return t
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := ticketDoc{
		Subject:     t.Subject,
		Description: t.Description,
		Category:    t.CategoryID,
		CreatedBy:   t.CreatedByID,
		AssignedTo:  t.AssignedToID,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Comments:    []domain.Comment{},
		Attachments: t.Attachments,
		Upvotes:     []string{},
		Downvotes:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTicketNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc ticketDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TicketRepository) List(ctx context.Context, f ports.ListTicketsFilter) ([]*domain.Ticket, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	// Ad-hoc equality filters go in first so the scoped fields below always
	// win when a caller supplies a colliding query key such as created_by.
	for k, v := range f.Extra {
		filter[k] = v
	}
	if f.CreatedBy != "" {
		filter["created_by"] = f.CreatedBy
	}
	if f.AssignedTo != "" {
		filter["assigned_to"] = f.AssignedTo
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"subject": re},
			bson.M{"description": re},
		}
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	order := 1
	if f.SortDesc {
		order = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: f.SortBy, Value: order}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer cur.Close(ctx)

	var tickets []*domain.Ticket
	for cur.Next(ctx) {
		var doc ticketDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode ticket: %w", err)
		}
		tickets = append(tickets, doc.toDomain())
	}
	return tickets, total, cur.Err()
}

func (r *TicketRepository) Update(ctx context.Context, id string, patch ports.TicketPatch) (*domain.Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTicketNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.AssignedTo != nil {
		if *patch.AssignedTo == "" {
			unset["assigned_to"] = ""
		} else {
			set["assigned_to"] = *patch.AssignedTo
		}
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ticketDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTicketNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// AppendComment pushes the comment in one atomic update and returns the full
// updated list.
func (r *TicketRepository) AppendComment(ctx context.Context, id string, c domain.Comment) ([]domain.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTicketNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	update := bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ticketDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("append comment: %w", err)
	}
	return doc.toDomain().Comments, nil
}

// ToggleVote performs the whole vote mutation as one aggregation-pipeline
// update: the opposite set always loses the user, and the target set gains or
// loses them depending on current membership. Concurrent votes from different
// users therefore never overwrite each other.
func (r *TicketRepository) ToggleVote(ctx context.Context, id, userID string, dir ports.VoteDirection) (*ports.VoteCounts, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTicketNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	target, opposite := "upvotes", "downvotes"
	if dir == ports.VoteDown {
		target, opposite = "downvotes", "upvotes"
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			target: bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, "$" + target}},
				bson.M{"$setDifference": bson.A{"$" + target, bson.A{userID}}},
				bson.M{"$concatArrays": bson.A{"$" + target, bson.A{userID}}},
			}},
			opposite:     bson.M{"$setDifference": bson.A{"$" + opposite, bson.A{userID}}},
			"updated_at": "$$NOW",
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ticketDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, pipeline, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("toggle vote: %w", err)
	}
	return &ports.VoteCounts{Upvotes: len(doc.Upvotes), Downvotes: len(doc.Downvotes)}, nil
}

func (r *TicketRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	return err
}
