package handlers

import (
	"context"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/toystacks/toy-server/models"
)

// memStore is an in-memory ToyStore mirroring the MongoDB semantics the
// handlers rely on: insertion order, literal case-insensitive name search,
// numeric price sort with unparsable prices as null.
type memStore struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]bson.M

	err     error
	pingErr error
	queries []models.ToyQuery
}

func newMemStore() *memStore {
	return &memStore{docs: map[primitive.ObjectID]bson.M{}}
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (m *memStore) matches(doc bson.M, q models.ToyQuery) bool {
	if q.NameContains != "" {
		name, _ := doc["toyName"].(string)
		if !strings.Contains(strings.ToLower(name), strings.ToLower(q.NameContains)) {
			return false
		}
	}
	if q.SubCategory != "" && doc["subCategory"] != q.SubCategory {
		return false
	}
	if q.SellerEmail != "" && doc["sellerEmail"] != q.SellerEmail {
		return false
	}
	return true
}

func toDouble(v interface{}) interface{} {
	switch p := v.(type) {
	case float64:
		return p
	case int:
		return float64(p)
	case int32:
		return float64(p)
	case int64:
		return float64(p)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	}
	return nil
}

func (m *memStore) FindToys(_ context.Context, q models.ToyQuery) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}

	out := []bson.M{}
	for _, id := range m.order {
		doc := m.docs[id]
		if !m.matches(doc, q) {
			continue
		}
		doc = copyDoc(doc)
		if q.PriceSort != models.PriceUnsorted {
			doc["price"] = toDouble(doc["price"])
		}
		out = append(out, doc)
	}

	if q.PriceSort != models.PriceUnsorted {
		less := func(a, b interface{}) bool {
			if a == nil {
				return b != nil
			}
			if b == nil {
				return false
			}
			return a.(float64) < b.(float64)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if q.PriceSort == models.PriceDescending {
				return less(out[j]["price"], out[i]["price"])
			}
			return less(out[i]["price"], out[j]["price"])
		})
	}

	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) FindToyByID(_ context.Context, id primitive.ObjectID) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return copyDoc(doc), nil
}

func (m *memStore) InsertToy(_ context.Context, doc bson.M) (models.InsertAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.InsertAck{}, m.err
	}
	id := primitive.NewObjectID()
	stored := copyDoc(doc)
	stored["_id"] = id
	m.docs[id] = stored
	m.order = append(m.order, id)
	return models.InsertAck{Acknowledged: true, InsertedID: id}, nil
}

func (m *memStore) UpdateToy(_ context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.UpdateAck{}, m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return models.UpdateAck{Acknowledged: true}, nil
	}
	modified := int64(0)
	for _, f := range models.UpdatableFields {
		if !reflect.DeepEqual(doc[f], fields[f]) {
			modified = 1
		}
		doc[f] = fields[f]
	}
	return models.UpdateAck{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
}

func (m *memStore) DeleteToy(_ context.Context, id primitive.ObjectID) (models.DeleteAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.DeleteAck{}, m.err
	}
	if _, ok := m.docs[id]; !ok {
		return models.DeleteAck{Acknowledged: true}, nil
	}
	delete(m.docs, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return models.DeleteAck{Acknowledged: true, DeletedCount: 1}, nil
}

func (m *memStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *memStore) lastQuery() models.ToyQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[len(m.queries)-1]
}
