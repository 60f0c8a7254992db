package paginate

import (
	"errors"
	"fmt"
)

// ValidationError indica que la petición pública está mal formada o referencia
// campos no permitidos. Se produce antes de tocar el almacén: cero efectos.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func newInvalidKey(key string) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf("invalid query key '%s'", key)}
}

func newInvalidSort(value interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf("Sort value was expected to be only 'asc' or 'desc', but was '%v'", value)}
}

func newInvalidSearch(value interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf("Expected string value for the search query, but got %v", value)}
}

func newInvalidWindow() *ValidationError {
	return &ValidationError{msg: "offset and limit must be non-negative integers"}
}

// IsValidation informa si err proviene de la validación de la petición,
// para que la capa de transporte lo traduzca a un error de cliente.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
