package paginate

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// FieldSpec clasifica un campo interno del documento. La clasificación decide
// la semántica de los operadores: pertenencia en arrays frente a igualdad en
// escalares, y si se permite filtrar por ausencia de valor.
type FieldSpec struct {
	// Required indica que el campo siempre tiene valor; excluir "sin valor"
	// de un campo requerido es una petición inválida.
	Required bool
	// Array indica que el campo es de tipo array en el esquema.
	Array bool
}

// Schema es la tabla estática de metadatos por nombre de campo interno.
// Se declara una vez por colección; cualquier clave pública que no resuelva
// a una entrada del esquema se rechaza.
type Schema map[string]FieldSpec

// Config configura un Paginator en su construcción.
type Config struct {
	Collection *mongo.Collection
	Schema     Schema
	// Aliases mapea nombre interno -> alias público (ej. "_id" -> "id").
	// Los campos sin alias se exponen con su nombre interno.
	Aliases map[string]string
}
