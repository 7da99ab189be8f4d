// Package mongostore is the note store backed by MongoDB. Notes and
// categories live in two collections; category name and color are joined
// in on read.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marcus/noteshelf/internal/note"
)

type noteDoc struct {
	ID           string    `bson:"_id"`
	CategoryID   string    `bson:"category"`
	Title        string    `bson:"title"`
	Content      string    `bson:"content"`
	CreatedAt    time.Time `bson:"created_at"`
	LastEditedAt time.Time `bson:"last_edited_at"`
}

type categoryDoc struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	Color     string `bson:"color"`
	SortOrder int    `bson:"sort_order"`
}

// Store is a note.Store over a MongoDB database.
type Store struct {
	client *mongo.Client
	notes  *mongo.Collection
	cats   *mongo.Collection
	now    func() time.Time
}

var _ note.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and prepares dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client: client,
		notes:  db.Collection("notes"),
		cats:   db.Collection("categories"),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	if _, err := s.SeedCategories(ctx, note.DefaultCategories()); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes list and filter queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.notes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "last_edited_at", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "last_edited_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create note indexes: %w", classify(err))
	}
	_, err = s.cats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create category index: %w", classify(err))
	}
	return nil
}

// SeedCategories inserts categories whose names are missing and returns
// how many were added.
func (s *Store) SeedCategories(ctx context.Context, cats []note.Category) (int, error) {
	added := 0
	for _, c := range cats {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		res, err := s.cats.UpdateOne(ctx,
			bson.M{"name": c.Name},
			bson.M{"$setOnInsert": categoryDoc{ID: id, Name: c.Name, Color: c.Color, SortOrder: c.SortOrder}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return added, fmt.Errorf("seed category %q: %w", c.Name, classify(err))
		}
		if res.UpsertedCount > 0 {
			added++
		}
	}
	return added, nil
}

// ListCategories returns all categories in display order.
func (s *Store) ListCategories(ctx context.Context) ([]note.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := s.cats.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", classify(err))
	}
	defer cursor.Close(ctx)

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", classify(err))
	}
	cats := make([]note.Category, len(docs))
	for i, d := range docs {
		cats[i] = note.Category{ID: d.ID, Name: d.Name, Color: d.Color, SortOrder: d.SortOrder}
	}
	return cats, nil
}

func (s *Store) category(ctx context.Context, id string) (note.Category, error) {
	var d categoryDoc
	err := s.cats.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return note.Category{}, note.Invalid("category", "invalid pk %q - object does not exist", id)
	}
	if err != nil {
		return note.Category{}, fmt.Errorf("find category %s: %w", id, classify(err))
	}
	return note.Category{ID: d.ID, Name: d.Name, Color: d.Color, SortOrder: d.SortOrder}, nil
}

// CreateNote inserts a new note.
func (s *Store) CreateNote(ctx context.Context, in note.NewNote) (*note.Note, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	cat, err := s.category(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := noteDoc{
		ID:           uuid.NewString(),
		CategoryID:   in.CategoryID,
		Title:        in.Title,
		Content:      in.Content,
		CreatedAt:    now,
		LastEditedAt: now,
	}
	if _, err := s.notes.InsertOne(ctx, d); err != nil {
		return nil, fmt.Errorf("insert note: %w", classify(err))
	}
	n := toNote(d, map[string]note.Category{cat.ID: cat})
	return &n, nil
}

// UpdateNote applies the patch with $set and returns the updated note.
func (s *Store) UpdateNote(ctx context.Context, id string, patch note.Patch) (*note.Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if _, err := s.category(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	prev, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	edited := s.now()
	if !edited.After(prev.LastEditedAt) {
		edited = prev.LastEditedAt.Add(time.Millisecond)
	}
	set := patchSet(patch, edited)

	var d noteDoc
	err = s.notes.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("note %s: %w", id, note.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update note: %w", classify(err))
	}
	return s.decorate(ctx, d)
}

// patchSet builds the $set document for a patch.
func patchSet(p note.Patch, edited time.Time) bson.M {
	set := bson.M{"last_edited_at": edited}
	if p.CategoryID != nil {
		set["category"] = *p.CategoryID
	}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Content != nil {
		set["content"] = *p.Content
	}
	return set
}

func (s *Store) find(ctx context.Context, id string) (noteDoc, error) {
	var d noteDoc
	err := s.notes.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return d, fmt.Errorf("note %s: %w", id, note.ErrNotFound)
	}
	if err != nil {
		return d, fmt.Errorf("find note %s: %w", id, classify(err))
	}
	return d, nil
}

// GetNote retrieves a note by ID.
func (s *Store) GetNote(ctx context.Context, id string) (*note.Note, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, d)
}

// ListNotes returns summaries, most recently edited first.
func (s *Store) ListNotes(ctx context.Context, categoryID string) ([]note.Summary, error) {
	filter := bson.M{}
	if categoryID != "" {
		filter["category"] = categoryID
	}
	opts := options.Find().SetSort(bson.D{{Key: "last_edited_at", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := s.notes.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", classify(err))
	}
	defer cursor.Close(ctx)

	var docs []noteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", classify(err))
	}
	byID, err := s.categoryTable(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]note.Summary, len(docs))
	for i, d := range docs {
		out[i] = toNote(d, byID).Summary()
	}
	return out, nil
}

func (s *Store) categoryTable(ctx context.Context) (map[string]note.Category, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]note.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return byID, nil
}

func (s *Store) decorate(ctx context.Context, d noteDoc) (*note.Note, error) {
	byID, err := s.categoryTable(ctx)
	if err != nil {
		return nil, err
	}
	n := toNote(d, byID)
	return &n, nil
}

func toNote(d noteDoc, cats map[string]note.Category) note.Note {
	n := note.Note{
		ID:           d.ID,
		CategoryID:   d.CategoryID,
		Title:        d.Title,
		Content:      d.Content,
		CreatedAt:    d.CreatedAt.UTC(),
		LastEditedAt: d.LastEditedAt.UTC(),
	}
	if c, ok := cats[d.CategoryID]; ok {
		n.CategoryName = c.Name
		n.CategoryColor = c.Color
	}
	return n
}

// classify marks connectivity failures as network errors.
func classify(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, note.ErrNetwork)
	}
	return err
}
