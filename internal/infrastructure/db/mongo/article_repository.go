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

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

const collectionArticles = "articles"

type ArticleRepository struct {
	col *mongo.Collection
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: db.Collection(collectionArticles)}
}

type commentDoc struct {
	ID        string             `bson:"_id"`
	UserID    primitive.ObjectID `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type articleDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Title          string               `bson:"title"`
	Slug           string               `bson:"slug"`
	Content        string               `bson:"content"`
	Excerpt        string               `bson:"excerpt"`
	FeaturedImage  string               `bson:"featuredImage"`
	Category       string               `bson:"category"`
	Tags           []string             `bson:"tags"`
	AuthorID       primitive.ObjectID   `bson:"author"`
	Status         string               `bson:"status"`
	PublishedAt    *time.Time           `bson:"publishedAt,omitempty"`
	Views          int64                `bson:"views"`
	ReadTime       int                  `bson:"readTime"`
	Likes          []primitive.ObjectID `bson:"likes"`
	Comments       []commentDoc         `bson:"comments"`
	Featured       bool                 `bson:"featured"`
	SEOTitle       string               `bson:"seoTitle,omitempty"`
	SEODescription string               `bson:"seoDescription,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

func newArticleDoc(a *domain.Article) (*articleDoc, error) {
	author, err := primitive.ObjectIDFromHex(a.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("article author id %q: %w", a.AuthorID, err)
	}

	doc := &articleDoc{
		Title:          a.Title,
		Slug:           a.Slug,
		Content:        a.Content,
		Excerpt:        a.Excerpt,
		FeaturedImage:  a.FeaturedImage,
		Category:       a.Category,
		Tags:           a.Tags,
		AuthorID:       author,
		Status:         string(a.Status),
		PublishedAt:    a.PublishedAt,
		Views:          a.Views,
		ReadTime:       a.ReadTime,
		Likes:          toObjectIDs(a.Likes),
		Featured:       a.Featured,
		SEOTitle:       a.SEOTitle,
		SEODescription: a.SEODescription,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	doc.Comments = make([]commentDoc, 0, len(a.Comments))
	for _, c := range a.Comments {
		uid, _ := primitive.ObjectIDFromHex(c.UserID)
		doc.Comments = append(doc.Comments, commentDoc{ID: c.ID, UserID: uid, Text: c.Text, CreatedAt: c.CreatedAt})
	}
	if a.ID != "" {
		if doc.ID, err = primitive.ObjectIDFromHex(a.ID); err != nil {
			return nil, domain.ErrArticleNotFound
		}
	}
	return doc, nil
}

func (d *articleDoc) toDomain() *domain.Article {
	a := &domain.Article{
		ID:             d.ID.Hex(),
		Title:          d.Title,
		Slug:           d.Slug,
		Content:        d.Content,
		Excerpt:        d.Excerpt,
		FeaturedImage:  d.FeaturedImage,
		Category:       d.Category,
		Tags:           d.Tags,
		AuthorID:       d.AuthorID.Hex(),
		Status:         domain.ArticleStatus(d.Status),
		PublishedAt:    d.PublishedAt,
		Views:          d.Views,
		ReadTime:       d.ReadTime,
		Likes:          hexIDs(d.Likes),
		Featured:       d.Featured,
		SEOTitle:       d.SEOTitle,
		SEODescription: d.SEODescription,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, c := range d.Comments {
		a.Comments = append(a.Comments, domain.Comment{ID: c.ID, UserID: c.UserID.Hex(), Text: c.Text, CreatedAt: c.CreatedAt})
	}
	return a
}

// Create inserts a new article document.
func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newArticleDoc(a)
	if err != nil {
		return err
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert article: %w", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrArticleNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ArticleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc articleDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	return doc.toDomain(), nil
}

// List runs the filtered, sorted and paginated query together with its
// total count.
func (r *ArticleRepository) List(ctx context.Context, q ports.ArticleQuery) ([]*domain.Article, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, ok := buildArticleFilter(q)
	if !ok {
		return []*domain.Article{}, 0, nil
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, buildFindOptions(q))
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []articleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode articles: %w", err)
	}

	out := make([]*domain.Article, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

// buildArticleFilter translates q into a Mongo filter. ok is false when the
// query can match nothing, e.g. a malformed author ID.
func buildArticleFilter(q ports.ArticleQuery) (filter bson.M, ok bool) {
	filter = bson.M{}

	if q.Status != "" {
		filter["status"] = string(q.Status)
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.AuthorID != "" {
		oid, err := primitive.ObjectIDFromHex(q.AuthorID)
		if err != nil {
			return nil, false
		}
		filter["author"] = oid
	}
	if len(q.Tags) > 0 {
		filter["tags"] = bson.M{"$in": q.Tags}
	}
	if q.Featured != nil {
		filter["featured"] = *q.Featured
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"tags": pattern},
		}
	}
	return filter, true
}

func buildFindOptions(q ports.ArticleQuery) *options.FindOptions {
	dir := 1
	if q.SortDesc {
		dir = -1
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = ports.SortPublishedAt
	}

	opts := options.Find().SetSort(bson.D{{Key: sortBy, Value: dir}, {Key: "_id", Value: dir}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

// Update overwrites the editable fields. Counters, likes and comments are
// only touched by their own atomic operations.
func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		return domain.ErrArticleNotFound
	}

	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	set := bson.M{
		"title":          a.Title,
		"content":        a.Content,
		"excerpt":        a.Excerpt,
		"featuredImage":  a.FeaturedImage,
		"category":       a.Category,
		"tags":           tags,
		"status":         string(a.Status),
		"readTime":       a.ReadTime,
		"featured":       a.Featured,
		"seoTitle":       a.SEOTitle,
		"seoDescription": a.SEODescription,
		"updatedAt":      a.UpdatedAt,
	}
	if a.PublishedAt != nil {
		set["publishedAt"] = *a.PublishedAt
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrArticleNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) IncrementViews(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *ArticleRepository) AddComment(ctx context.Context, articleID string, c domain.Comment) error {
	uid, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	doc := commentDoc{ID: c.ID, UserID: uid, Text: c.Text, CreatedAt: c.CreatedAt}
	return r.updateOne(ctx, articleID, bson.M{"$push": bson.M{"comments": doc}})
}

func (r *ArticleRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrArticleNotFound
	}
	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

// SetLike adds or removes the user from the likes set and returns the
// resulting like count.
func (r *ArticleRepository) SetLike(ctx context.Context, articleID, userID string, liked bool) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(articleID)
	if err != nil {
		return 0, domain.ErrArticleNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, domain.ErrUserNotFound
	}

	op := "$pull"
	if liked {
		op = "$addToSet"
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var doc struct {
		Likes []primitive.ObjectID `bson:"likes"`
	}
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{op: bson.M{"likes": uid}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrArticleNotFound
		}
		return 0, fmt.Errorf("set like: %w", err)
	}
	return len(doc.Likes), nil
}

func (r *ArticleRepository) CountByAuthor(ctx context.Context, authorID string, status domain.ArticleStatus) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return 0, nil
	}
	filter := bson.M{"author": oid}
	if status != "" {
		filter["status"] = string(status)
	}
	return r.count(ctx, filter)
}

func (r *ArticleRepository) CountByStatus(ctx context.Context, status domain.ArticleStatus) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	return r.count(ctx, filter)
}

func (r *ArticleRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

func (r *ArticleRepository) CountPublishedByCategory(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(domain.StatusPublished)}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Category] = row.Count
	}
	return out, nil
}

func (r *ArticleRepository) TotalViews(ctx context.Context, authorID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{}
	if authorID != "" {
		oid, err := primitive.ObjectIDFromHex(authorID)
		if err != nil {
			return 0, nil
		}
		match["author"] = oid
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$views"}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate views: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode views: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// EnsureIndexes creates necessary indexes on the articles collection.
func (r *ArticleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "publishedAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
