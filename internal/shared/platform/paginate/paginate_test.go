package paginate

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// esquema de prueba: campos escalares requeridos, un escalar opcional y un array
var testSchema = Schema{
	"_id":       {Required: true},
	"username":  {Required: true},
	"role":      {Required: true},
	"status":    {},
	"tags":      {Array: true},
	"createdAt": {Required: true},
}

func newTestPaginator(coll collection) *Paginator[bson.M] {
	p := New[bson.M](Config{
		Schema:  testSchema,
		Aliases: map[string]string{"_id": "id"},
	})
	p.coll = coll
	return p
}

// fakeCollection registra el filtro y las opciones recibidas y responde con
// documentos fijos, sin MongoDB de por medio. El mutex protege los campos
// porque conteo y ventana se ejecutan en paralelo.
type fakeCollection struct {
	mu          sync.Mutex
	docs        []interface{}
	total       int64
	countFilter interface{}
	findFilter  interface{}
	findOpts    *options.FindOptions
	calls       int
}

func (f *fakeCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.countFilter = filter
	return f.total, nil
}

func (f *fakeCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.findFilter = filter
	if len(opts) > 0 {
		f.findOpts = opts[0]
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

// ---------------- Alias y esquema ----------------

func TestBuildQuery_AliasResolution(t *testing.T) {
	p := newTestPaginator(nil)

	query, err := p.buildQuery(Request{
		Filter: &Filter{Include: map[string]interface{}{"id": "abc123"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": "abc123"}, query)
}

func TestBuildQuery_UnknownKeyRejectedEverywhere(t *testing.T) {
	p := newTestPaginator(nil)

	requests := map[string]Request{
		"search":         {Search: map[string]interface{}{"ghost": "x"}},
		"sort":           {Sort: map[string]interface{}{"ghost": "asc"}},
		"filter.include": {Filter: &Filter{Include: map[string]interface{}{"ghost": "x"}}},
		"filter.exclude": {Filter: &Filter{Exclude: map[string]interface{}{"ghost": "x"}}},
	}

	for section, req := range requests {
		t.Run(section, func(t *testing.T) {
			coll := &fakeCollection{}
			p.coll = coll
			_, err := p.Paginate(context.Background(), req, nil)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.EqualError(t, err, "invalid query key 'ghost'")
			// la validación falla antes de tocar el almacén
			assert.Zero(t, coll.calls)
		})
	}
}

// ---------------- Búsqueda ----------------

func TestBuildSearch_EscapedCaseInsensitiveRegex(t *testing.T) {
	p := newTestPaginator(nil)

	clause, err := p.buildSearch(map[string]interface{}{"username": "a.d+y"})
	require.NoError(t, err)
	re, ok := clause["username"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `a\.d\+y`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestBuildSearch_NonStringRejected(t *testing.T) {
	p := newTestPaginator(nil)

	_, err := p.buildSearch(map[string]interface{}{"username": 42})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "Expected string value for the search query, but got 42")
}

func TestBuildSearch_AbsentValuesSkipped(t *testing.T) {
	p := newTestPaginator(nil)

	// política: sin término no hay cláusula, sea el campo requerido o no
	clause, err := p.buildSearch(map[string]interface{}{"username": nil, "status": nil})
	require.NoError(t, err)
	assert.Empty(t, clause)
}

// ---------------- Orden ----------------

func TestBuildSort_Directions(t *testing.T) {
	p := newTestPaginator(nil)

	order, err := p.buildSort(map[string]interface{}{"username": "asc", "createdAt": "desc"})
	require.NoError(t, err)
	// claves en orden lexicográfico para composición determinista
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "username", Value: 1}}, order)
}

func TestBuildSort_InvalidToken(t *testing.T) {
	p := newTestPaginator(nil)
	coll := &fakeCollection{}
	p.coll = coll

	_, err := p.Paginate(context.Background(), Request{
		Sort: map[string]interface{}{"username": "ascending"},
	}, nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "Sort value was expected to be only 'asc' or 'desc', but was 'ascending'")
	assert.Zero(t, coll.calls)
}

// ---------------- Filtros ----------------

func TestBuildInclude_ScalarSemantics(t *testing.T) {
	p := newTestPaginator(nil)

	clause, err := p.buildInclude(map[string]interface{}{
		"status":   "active",
		"username": []interface{}{"ady", "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, "active", clause["status"])
	assert.Equal(t, bson.M{"$in": []interface{}{"ady", "bob"}}, clause["username"])
}

func TestBuildInclude_ArrayMembership(t *testing.T) {
	p := newTestPaginator(nil)

	clause, err := p.buildInclude(map[string]interface{}{"tags": []interface{}{"go", "db"}})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$all": []interface{}{"go", "db"}}, clause["tags"])
}

func TestBuildInclude_AbsentValueSkipped(t *testing.T) {
	p := newTestPaginator(nil)

	clause, err := p.buildInclude(map[string]interface{}{"status": nil})
	require.NoError(t, err)
	assert.Empty(t, clause)
}

func TestBuildExclude_ScalarSemantics(t *testing.T) {
	p := newTestPaginator(nil)

	clause, err := p.buildExclude(map[string]interface{}{
		"status":   "suspended",
		"username": []interface{}{"ady", "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$ne": "suspended"}, clause["status"])
	assert.Equal(t, bson.M{"$nin": []interface{}{"ady", "bob"}}, clause["username"])
}

func TestBuildExclude_ArrayNegation(t *testing.T) {
	p := newTestPaginator(nil)

	clause, err := p.buildExclude(map[string]interface{}{"tags": []interface{}{"go"}})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$not": bson.M{"$all": []interface{}{"go"}}}, clause["tags"])
}

func TestBuildExclude_NullOnRequiredFieldRejected(t *testing.T) {
	p := newTestPaginator(nil)

	_, err := p.buildExclude(map[string]interface{}{"role": nil})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "invalid query key 'role'")
}

func TestBuildExclude_NullOnOptionalFieldFiltersAbsence(t *testing.T) {
	p := newTestPaginator(nil)

	clause, err := p.buildExclude(map[string]interface{}{"status": nil})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$ne": nil}, clause["status"])
}

// ---------------- Composición ----------------

func TestBuildQuery_IncludeExcludeComposeUnderAnd(t *testing.T) {
	p := newTestPaginator(nil)

	query, err := p.buildQuery(Request{
		Filter: &Filter{
			Include: map[string]interface{}{"status": "active"},
			Exclude: map[string]interface{}{"status": "active"},
		},
	}, nil)
	require.NoError(t, err)

	and, ok := query["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 2)
	// include y exclude sobre el mismo campo conviven: el resultado es vacío
	assert.Equal(t, bson.M{"status": "active"}, and[0])
	assert.Equal(t, bson.M{"status": bson.M{"$ne": "active"}}, and[1])
}

func TestBuildQuery_TrustedFilterBypassesValidation(t *testing.T) {
	p := newTestPaginator(nil)

	// "tenantId" no está en el esquema: solo el filtro privado puede usarlo
	query, err := p.buildQuery(Request{
		Search: map[string]interface{}{"username": "ady"},
	}, bson.M{"tenantId": "t-1"})
	require.NoError(t, err)
	assert.Equal(t, "t-1", query["tenantId"])
	assert.Contains(t, query, "username")
}

// ---------------- Ejecución ----------------

func TestPaginate_NegativeWindowRejected(t *testing.T) {
	coll := &fakeCollection{}
	p := newTestPaginator(coll)

	for _, req := range []Request{{Offset: -1}, {Limit: -5}} {
		_, err := p.Paginate(context.Background(), req, nil)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	}
	assert.Zero(t, coll.calls)
}

func TestPaginate_CountAndWindowShareFilter(t *testing.T) {
	coll := &fakeCollection{
		docs:  []interface{}{bson.M{"username": "adyx"}},
		total: 7,
	}
	p := newTestPaginator(coll)

	page, err := p.Paginate(context.Background(), Request{
		Offset: 2,
		Limit:  3,
		Search: map[string]interface{}{"username": "ady"},
		Sort:   map[string]interface{}{"username": "asc"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(7), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "adyx", page.Data[0]["username"])

	// mismo predicado en el conteo y en la ventana
	assert.Equal(t, coll.countFilter, coll.findFilter)

	require.NotNil(t, coll.findOpts)
	assert.Equal(t, int64(2), *coll.findOpts.Skip)
	assert.Equal(t, int64(3), *coll.findOpts.Limit)
	assert.Equal(t, bson.D{{Key: "username", Value: 1}}, coll.findOpts.Sort)
}

func TestPaginate_ZeroLimitReturnsOnlyTotal(t *testing.T) {
	coll := &fakeCollection{total: 11}
	p := newTestPaginator(coll)

	page, err := p.Paginate(context.Background(), Request{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	assert.Empty(t, page.Data)
	assert.Nil(t, coll.findFilter) // la ventana vacía no llega a Find
}

func TestPaginate_EmptyMatchIsNotAnError(t *testing.T) {
	coll := &fakeCollection{docs: nil, total: 0}
	p := newTestPaginator(coll)

	page, err := p.Paginate(context.Background(), Request{Limit: 10}, nil)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}
