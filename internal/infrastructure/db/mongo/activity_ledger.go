package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

// ActivityLedger implements ports.ActivityLedger over the issues and votes
// collections. Vote uniqueness is enforced by the {issue, user} unique index
// created in EnsureIndexes.
type ActivityLedger struct {
	issues *mongo.Collection
	votes  *mongo.Collection
}

func NewActivityLedger(db *mongo.Database) *ActivityLedger {
	return &ActivityLedger{
		issues: db.Collection(collectionIssues),
		votes:  db.Collection(collectionVotes),
	}
}

type mongoVote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Issue     primitive.ObjectID `bson:"issue"`
	User      primitive.ObjectID `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (l *ActivityLedger) CountIssuesCreatedBy(ctx context.Context, userID string) (int64, error) {
	oid, err := objectID(userID)
	if err != nil {
		return 0, err
	}
	return l.count(ctx, l.issues, bson.M{"createdBy": oid}, "count issues")
}

func (l *ActivityLedger) CountVotesCastBy(ctx context.Context, userID string) (int64, error) {
	oid, err := objectID(userID)
	if err != nil {
		return 0, err
	}
	return l.count(ctx, l.votes, bson.M{"user": oid}, "count votes")
}

func (l *ActivityLedger) CountVotesForIssue(ctx context.Context, issueID string) (int64, error) {
	oid, err := objectID(issueID)
	if err != nil {
		return 0, err
	}
	return l.count(ctx, l.votes, bson.M{"issue": oid}, "count issue votes")
}

func (l *ActivityLedger) VoteExists(ctx context.Context, issueID, userID string) (bool, error) {
	filter, err := voteFilter(issueID, userID)
	if err != nil {
		return false, err
	}
	n, err := l.count(ctx, l.votes, filter, "vote exists")
	return n > 0, err
}

// InsertVote relies on the unique index so two concurrent casts of the same
// vote cannot both succeed.
func (l *ActivityLedger) InsertVote(ctx context.Context, v *domain.Vote) error {
	issue, err := objectID(v.IssueID)
	if err != nil {
		return err
	}
	user, err := objectID(v.UserID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = l.votes.InsertOne(ctx, mongoVote{
		Issue:     issue,
		User:      user,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyVoted
		}
		return wrapErr("insert vote", err)
	}
	return nil
}

func (l *ActivityLedger) DeleteVote(ctx context.Context, issueID, userID string) (int64, error) {
	filter, err := voteFilter(issueID, userID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := l.votes.DeleteOne(ctx, filter)
	if err != nil {
		return 0, wrapErr("delete vote", err)
	}
	return res.DeletedCount, nil
}

// DeleteAllVotesForIssue collects the voters first so their scores can be
// reconciled once the votes are gone.
func (l *ActivityLedger) DeleteAllVotesForIssue(ctx context.Context, issueID string) ([]string, error) {
	oid, err := objectID(issueID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"issue": oid}
	raw, err := l.votes.Distinct(ctx, "user", filter)
	if err != nil {
		return nil, wrapErr("list voters", err)
	}
	// A vote inserted between Distinct and DeleteMany is removed without its
	// voter being listed; that voter's score catches up on their next read.
	if _, err := l.votes.DeleteMany(ctx, filter); err != nil {
		return nil, wrapErr("delete votes", err)
	}

	voters := make([]string, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			voters = append(voters, oid.Hex())
		}
	}
	return voters, nil
}

func (l *ActivityLedger) CountVotesForIssues(ctx context.Context, issueIDs []string) (map[string]int64, error) {
	oids, err := objectIDs(issueIDs)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"issue": bson.M{"$in": oids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$issue", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := l.votes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("count votes per issue", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode vote counts", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ID.Hex()] = row.Count
	}
	return out, nil
}

func (l *ActivityLedger) VotedIssues(ctx context.Context, userID string, issueIDs []string) (map[string]bool, error) {
	user, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	oids, err := objectIDs(issueIDs)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	raw, err := l.votes.Distinct(ctx, "issue", bson.M{"user": user, "issue": bson.M{"$in": oids}})
	if err != nil {
		return nil, wrapErr("voted issues", err)
	}

	out := make(map[string]bool, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			out[oid.Hex()] = true
		}
	}
	return out, nil
}

// RecentVotesBy returns the user's latest votes joined with the issue title.
func (l *ActivityLedger) RecentVotesBy(ctx context.Context, userID string, limit int) ([]ports.VoteActivity, error) {
	user, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": user}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: int64(max(limit, 1))}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionIssues,
			"localField":   "issue",
			"foreignField": "_id",
			"as":           "issueDoc",
			"pipeline":     bson.A{bson.M{"$project": bson.M{"title": 1}}},
		}}},
	}
	cursor, err := l.votes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("recent votes", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Issue     primitive.ObjectID `bson:"issue"`
		CreatedAt time.Time          `bson:"createdAt"`
		IssueDoc  []struct {
			Title string `bson:"title"`
		} `bson:"issueDoc"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode recent votes", err)
	}

	out := make([]ports.VoteActivity, 0, len(rows))
	for _, row := range rows {
		a := ports.VoteActivity{IssueID: row.Issue.Hex(), CreatedAt: row.CreatedAt}
		if len(row.IssueDoc) > 0 {
			a.IssueTitle = row.IssueDoc[0].Title
		}
		out = append(out, a)
	}
	return out, nil
}

func (l *ActivityLedger) count(ctx context.Context, col *mongo.Collection, filter bson.M, op string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, wrapErr(op, err)
	}
	return n, nil
}

func voteFilter(issueID, userID string) (bson.M, error) {
	issue, err := objectID(issueID)
	if err != nil {
		return nil, err
	}
	user, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return bson.M{"issue": issue, "user": user}, nil
}
