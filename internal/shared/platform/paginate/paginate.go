// Package paginate traduce peticiones públicas de paginación (offset, límite,
// búsqueda, orden y filtros de inclusión/exclusión) en consultas MongoDB
// validadas contra un esquema estático, y las ejecuta como conteo + ventana.
package paginate

import (
	"context"
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// collection abstrae las dos operaciones de lectura que necesita el
// ejecutor. *mongo.Collection la satisface tal cual.
type collection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// ---------------- Petición pública ----------------

// Filter agrupa los filtros públicos por polaridad. Cada clave es un nombre
// de campo público y cada valor uno o varios literales.
type Filter struct {
	Include map[string]interface{}
	Exclude map[string]interface{}
}

// Request es la petición pública de paginación. No es confiable: cada campo
// referenciado se valida contra el esquema antes de tocar el almacén.
type Request struct {
	Offset int
	Limit  int
	Search map[string]interface{}
	Sort   map[string]interface{}
	Filter *Filter
}

// Page es el resultado: total de documentos que casan (ignorando la ventana)
// y la página de datos ordenada, con como mucho Limit elementos desde Offset.
type Page[T any] struct {
	Total int64 `json:"total"`
	Data  []T   `json:"data"`
}

// ---------------- Paginator ----------------

// Paginator ejecuta paginación genérica sobre una colección. La tabla de
// alias y el esquema se fijan en la construcción y son inmutables, por lo que
// una misma instancia es segura para peticiones concurrentes.
type Paginator[T any] struct {
	coll    collection
	schema  Schema
	aliases map[string]string // público -> interno, invertido del Config
}

// New construye un Paginator a partir de la configuración.
func New[T any](cfg Config) *Paginator[T] {
	aliases := make(map[string]string, len(cfg.Aliases))
	for internal, public := range cfg.Aliases {
		aliases[public] = internal
	}
	return &Paginator[T]{coll: cfg.Collection, schema: cfg.Schema, aliases: aliases}
}

// resolve devuelve el nombre interno de un campo público; identidad si no
// hay alias registrado.
func (p *Paginator[T]) resolve(public string) string {
	if internal, ok := p.aliases[public]; ok {
		return internal
	}
	return public
}

// lookup resuelve el alias y confirma que el campo existe en el esquema.
func (p *Paginator[T]) lookup(public string) (string, FieldSpec, error) {
	field := p.resolve(public)
	spec, ok := p.schema[field]
	if !ok {
		return "", FieldSpec{}, newInvalidKey(public)
	}
	return field, spec, nil
}

// ---------------- Transformaciones por cláusula ----------------

// buildSearch compila cada término en una coincidencia de subcadena literal,
// insensible a mayúsculas. Política explícita: un valor ausente (nil) no
// emite cláusula, sea el campo requerido o no.
func (p *Paginator[T]) buildSearch(search map[string]interface{}) (bson.M, error) {
	clause := bson.M{}
	for key, value := range search {
		field, _, err := p.lookup(key)
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}
		term, ok := value.(string)
		if !ok {
			return nil, newInvalidSearch(value)
		}
		clause[field] = primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	}
	return clause, nil
}

// buildSort valida cada dirección y produce la instrucción de orden. Las
// claves se recorren en orden lexicográfico para que la composición de varios
// campos sea determinista; el desempate es el orden natural del documento.
func (p *Paginator[T]) buildSort(sortSpec map[string]interface{}) (bson.D, error) {
	keys := make([]string, 0, len(sortSpec))
	for key := range sortSpec {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	order := bson.D{}
	for _, key := range keys {
		field, _, err := p.lookup(key)
		if err != nil {
			return nil, err
		}
		var dir int
		switch sortSpec[key] {
		case "asc":
			dir = 1
		case "desc":
			dir = -1
		default:
			return nil, newInvalidSort(sortSpec[key])
		}
		order = append(order, bson.E{Key: field, Value: dir})
	}
	return order, nil
}

// buildInclude produce el fragmento de inclusión: pertenencia total ($all)
// en campos array, igualdad o $in en escalares. Valores ausentes se omiten.
func (p *Paginator[T]) buildInclude(include map[string]interface{}) (bson.M, error) {
	clause := bson.M{}
	for key, value := range include {
		field, spec, err := p.lookup(key)
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}
		values := asSlice(value)
		switch {
		case spec.Array:
			clause[field] = bson.M{"$all": values}
		case len(values) == 1:
			clause[field] = values[0]
		default:
			clause[field] = bson.M{"$in": values}
		}
	}
	return clause, nil
}

// buildExclude produce el fragmento de exclusión: negación de pertenencia en
// campos array, $ne/$nin en escalares. Excluir "sin valor" solo es legítimo
// en campos no requeridos; en ellos significa filtrar la ausencia.
func (p *Paginator[T]) buildExclude(exclude map[string]interface{}) (bson.M, error) {
	clause := bson.M{}
	for key, value := range exclude {
		field, spec, err := p.lookup(key)
		if err != nil {
			return nil, err
		}
		if value == nil {
			if spec.Required {
				// un campo requerido siempre tiene valor: nada que excluir
				return nil, newInvalidKey(key)
			}
			clause[field] = bson.M{"$ne": nil}
			continue
		}
		values := asSlice(value)
		switch {
		case spec.Array:
			clause[field] = bson.M{"$not": bson.M{"$all": values}}
		case len(values) == 1:
			clause[field] = bson.M{"$ne": values[0]}
		default:
			clause[field] = bson.M{"$nin": values}
		}
	}
	return clause, nil
}

func asSlice(value interface{}) []interface{} {
	if vs, ok := value.([]interface{}); ok {
		return vs
	}
	return []interface{}{value}
}

// ---------------- Composición ----------------

// buildQuery compone los fragmentos no vacíos (include ∧ exclude ∧ search)
// bajo $and y fusiona estructuralmente el filtro privado. El filtro privado
// viene del resolver, no del cliente: no pasa por alias ni esquema.
func (p *Paginator[T]) buildQuery(req Request, trusted bson.M) (bson.M, error) {
	var fragments []bson.M

	if req.Filter != nil {
		include, err := p.buildInclude(req.Filter.Include)
		if err != nil {
			return nil, err
		}
		if len(include) > 0 {
			fragments = append(fragments, include)
		}
		exclude, err := p.buildExclude(req.Filter.Exclude)
		if err != nil {
			return nil, err
		}
		if len(exclude) > 0 {
			fragments = append(fragments, exclude)
		}
	}

	search, err := p.buildSearch(req.Search)
	if err != nil {
		return nil, err
	}
	if len(search) > 0 {
		fragments = append(fragments, search)
	}

	query := bson.M{}
	switch len(fragments) {
	case 0:
	case 1:
		for key, value := range fragments[0] {
			query[key] = value
		}
	default:
		query["$and"] = fragments
	}

	for key, value := range trusted {
		query[key] = value
	}
	return query, nil
}

// ---------------- Ejecución ----------------

// Paginate valida la petición completa, construye la consulta y lanza en
// paralelo el conteo total (sin ventana) y la lectura ordenada de la ventana
// [offset, offset+limit). Ambas operaciones observan el mismo filtro; no hay
// snapshot transaccional entre ellas, un pequeño sesgo bajo escrituras
// concurrentes es aceptado.
func (p *Paginator[T]) Paginate(ctx context.Context, req Request, trusted bson.M) (*Page[T], error) {
	if req.Offset < 0 || req.Limit < 0 {
		return nil, newInvalidWindow()
	}

	query, err := p.buildQuery(req, trusted)
	if err != nil {
		return nil, err
	}
	order, err := p.buildSort(req.Sort)
	if err != nil {
		return nil, err
	}

	var total int64
	data := make([]T, 0, req.Limit)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := p.coll.CountDocuments(gctx, query)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	// Limit == 0 es una ventana vacía: solo interesa el total.
	if req.Limit > 0 {
		g.Go(func() error {
			opts := options.Find().
				SetSkip(int64(req.Offset)).
				SetLimit(int64(req.Limit))
			if len(order) > 0 {
				opts.SetSort(order)
			}
			cursor, err := p.coll.Find(gctx, query, opts)
			if err != nil {
				return err
			}
			return cursor.All(gctx, &data)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Page[T]{Total: total, Data: data}, nil
}
