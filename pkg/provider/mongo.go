package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	glosterrors "github.com/fustilio/glost/pkg/errors"
)

// MongoDict is a dictionary provider backed by a MongoDB collection.
// Documents are expected to carry the lookup term under wordField; all
// remaining fields become the entry data:
//
//	{ "word": "hello", "ipa": "/həˈloʊ/", "scheme": "ipa" }
type MongoDict struct {
	name      string
	coll      *mongo.Collection
	wordField string
}

// MongoDictConfig configures a MongoDict connection.
type MongoDictConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string
	Collection string
	WordField  string // defaults to "word"
	Name       string // provider name, defaults to the collection name
}

// NewMongoDict connects to MongoDB and returns a provider over the
// configured collection. The connection is verified with a ping.
func NewMongoDict(ctx context.Context, cfg MongoDictConfig) (*MongoDict, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, glosterrors.Wrap(glosterrors.ErrCodeNetwork, err, "connect to %s", cfg.URI)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, glosterrors.Wrap(glosterrors.ErrCodeNetwork, err, "ping %s", cfg.URI)
	}

	dict := NewMongoDictFromCollection(cfg.Name, client.Database(cfg.Database).Collection(cfg.Collection), cfg.WordField)
	return dict, client.Disconnect, nil
}

// NewMongoDictFromCollection wraps an existing collection. wordField
// defaults to "word"; name defaults to the collection name.
func NewMongoDictFromCollection(name string, coll *mongo.Collection, wordField string) *MongoDict {
	if wordField == "" {
		wordField = "word"
	}
	if name == "" {
		name = coll.Name()
	}
	return &MongoDict{name: name, coll: coll, wordField: wordField}
}

// Name returns the provider identifier.
func (d *MongoDict) Name() string { return d.name }

// GetData fetches the document for input. A missing document is
// "absent", not an error.
func (d *MongoDict) GetData(ctx context.Context, input string) (map[string]any, bool, error) {
	var doc bson.M
	err := d.coll.FindOne(ctx, bson.M{d.wordField: d.CacheKey(input)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, glosterrors.Wrap(glosterrors.ErrCodeNetwork, err,
			"lookup %q in %s", input, d.coll.Name())
	}

	data := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "_id" || k == d.wordField {
			continue
		}
		data[k] = normalizeBSON(v)
	}
	return data, true, nil
}

// GetBatch fetches several entries with a single $in query.
func (d *MongoDict) GetBatch(ctx context.Context, inputs []string) (map[string]map[string]any, error) {
	keys := make([]string, len(inputs))
	keyToInput := make(map[string]string, len(inputs))
	for i, input := range inputs {
		keys[i] = d.CacheKey(input)
		keyToInput[keys[i]] = input
	}

	cur, err := d.coll.Find(ctx, bson.M{d.wordField: bson.M{"$in": keys}})
	if err != nil {
		return nil, glosterrors.Wrap(glosterrors.ErrCodeNetwork, err, "batch lookup in %s", d.coll.Name())
	}
	defer cur.Close(ctx)

	out := make(map[string]map[string]any, len(inputs))
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		key, _ := doc[d.wordField].(string)
		input, ok := keyToInput[key]
		if !ok {
			continue
		}
		data := make(map[string]any, len(doc))
		for k, v := range doc {
			if k == "_id" || k == d.wordField {
				continue
			}
			data[k] = normalizeBSON(v)
		}
		out[input] = data
	}
	return out, cur.Err()
}

// CacheKey lowercases the input; dictionary headwords are stored
// case-folded.
func (d *MongoDict) CacheKey(input string) string {
	return strings.ToLower(input)
}

// normalizeBSON converts BSON container types to the JSON-shaped values
// the extras merge engine expects.
func normalizeBSON(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalizeBSON(e)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeBSON(e)
		}
		return out
	case int32:
		return int(val)
	case int64:
		return int(val)
	default:
		return v
	}
}

var (
	_ Provider      = (*MongoDict)(nil)
	_ BatchProvider = (*MongoDict)(nil)
	_ Keyed         = (*MongoDict)(nil)
)
