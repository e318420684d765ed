package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

// IssueRepository implements ports.IssueRepository using MongoDB.
type IssueRepository struct {
	col *mongo.Collection
}

func NewIssueRepository(db *mongo.Database) *IssueRepository {
	return &IssueRepository{col: db.Collection(collectionIssues)}
}

type mongoIssue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Location    string             `bson:"location"`
	ImageURL    string             `bson:"imageUrl,omitempty"`
	Status      string             `bson:"status"`
	CreatedBy   primitive.ObjectID `bson:"createdBy"`
	Latitude    *float64           `bson:"latitude,omitempty"`
	Longitude   *float64           `bson:"longitude,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`

	// Populated by the creator lookup stage.
	Creator []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	} `bson:"creator,omitempty"`
}

func (m mongoIssue) toDomain() *domain.Issue {
	issue := &domain.Issue{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Description: m.Description,
		Category:    domain.IssueCategory(m.Category),
		Location:    m.Location,
		ImageURL:    m.ImageURL,
		Status:      domain.IssueStatus(m.Status),
		CreatedBy:   m.CreatedBy.Hex(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Latitude != nil && m.Longitude != nil {
		issue.Coordinates = &domain.Coordinates{Lat: *m.Latitude, Lng: *m.Longitude}
	}
	if len(m.Creator) > 0 {
		issue.Creator = &domain.UserRef{ID: m.Creator[0].ID.Hex(), Name: m.Creator[0].Name}
	}
	return issue
}

// Create inserts a new issue document and assigns its id.
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	creator, err := objectID(issue.CreatedBy)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoIssue{
		ID:          primitive.NewObjectID(),
		Title:       issue.Title,
		Description: issue.Description,
		Category:    string(issue.Category),
		Location:    issue.Location,
		ImageURL:    issue.ImageURL,
		Status:      string(issue.Status),
		CreatedBy:   creator,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
	if c := issue.Coordinates; c != nil {
		doc.Latitude, doc.Longitude = &c.Lat, &c.Lng
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return wrapErr("insert issue", err)
	}
	issue.ID = doc.ID.Hex()
	return nil
}

// FindByID retrieves an issue with its creator's public profile.
func (r *IssueRepository) FindByID(ctx context.Context, id string) (*domain.Issue, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	issues, err := r.aggregate(ctx, bson.M{"_id": oid}, bson.D{{Key: "_id", Value: 1}}, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, domain.ErrIssueNotFound
	}
	return issues[0], nil
}

// UpdatePending applies changes only while the issue is still pending.
func (r *IssueRepository) UpdatePending(ctx context.Context, id string, c ports.IssueChanges) (*domain.Issue, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	set := bson.M{"updatedAt": c.UpdatedAt}
	if c.Title != nil {
		set["title"] = *c.Title
	}
	if c.Description != nil {
		set["description"] = *c.Description
	}
	if c.Category != nil {
		set["category"] = string(*c.Category)
	}
	if c.Location != nil {
		set["location"] = *c.Location
	}
	if c.ImageURL != nil {
		set["imageUrl"] = *c.ImageURL
	}
	if c.Coordinates != nil {
		set["latitude"] = c.Coordinates.Lat
		set["longitude"] = c.Coordinates.Lng
	}

	updateCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": string(domain.IssueStatusPending)}
	res, err := r.col.UpdateOne(updateCtx, filter, bson.M{"$set": set})
	if err != nil {
		return nil, wrapErr("update issue", err)
	}
	if res.MatchedCount == 0 {
		return nil, r.missOrLocked(ctx, oid)
	}
	return r.FindByID(ctx, id)
}

// DeletePending removes the issue only while it is still pending.
func (r *IssueRepository) DeletePending(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrIssueNotFound
	}

	deleteCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(deleteCtx, bson.M{"_id": oid, "status": string(domain.IssueStatusPending)})
	if err != nil {
		return wrapErr("delete issue", err)
	}
	if res.DeletedCount == 0 {
		return r.missOrLocked(ctx, oid)
	}
	return nil
}

// missOrLocked tells apart a guarded write that matched nothing because the
// issue is gone from one that hit a non-pending issue.
func (r *IssueRepository) missOrLocked(ctx context.Context, oid primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.col.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrIssueNotFound
	}
	if err != nil {
		return wrapErr("find issue", err)
	}
	return domain.ErrIssueLocked
}

// List returns a page of issues matching filter and the total count.
func (r *IssueRepository) List(ctx context.Context, f ports.ListIssuesFilter) ([]*domain.Issue, int64, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	countCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	total, err := r.col.CountDocuments(countCtx, filter)
	if err != nil {
		return nil, 0, wrapErr("count issues", err)
	}

	order := -1
	if f.Sort == ports.SortOldest {
		order = 1
	}
	sort := bson.D{{Key: "createdAt", Value: order}, {Key: "_id", Value: order}}

	issues, err := r.aggregate(ctx, filter, sort, int64((f.Page-1)*f.Limit), int64(f.Limit))
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// ListByCreator returns the user's issues newest first. limit <= 0 means all.
func (r *IssueRepository) ListByCreator(ctx context.Context, userID string, limit int) ([]*domain.Issue, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return r.aggregate(ctx, bson.M{"createdBy": oid}, newestFirst, 0, int64(max(limit, 0)))
}

// ListWithCoordinates returns every issue that can be placed on a map.
func (r *IssueRepository) ListWithCoordinates(ctx context.Context) ([]*domain.Issue, error) {
	filter := bson.M{
		"latitude":  bson.M{"$exists": true, "$ne": nil},
		"longitude": bson.M{"$exists": true, "$ne": nil},
	}
	return r.aggregate(ctx, filter, newestFirst, 0, 0)
}

func (r *IssueRepository) CountByCreatorAndStatus(ctx context.Context, userID string, status domain.IssueStatus) (int64, error) {
	oid, err := objectID(userID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"createdBy": oid, "status": string(status)})
	if err != nil {
		return 0, wrapErr("count issues by status", err)
	}
	return n, nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// aggregate runs filter, sort and paging and joins the creator's name.
func (r *IssueRepository) aggregate(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: sort}},
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: skip}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
		"from":         collectionUsers,
		"localField":   "createdBy",
		"foreignField": "_id",
		"as":           "creator",
		"pipeline":     bson.A{bson.M{"$project": bson.M{"name": 1}}},
	}}})

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("query issues", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoIssue
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode issues", err)
	}

	out := make([]*domain.Issue, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
