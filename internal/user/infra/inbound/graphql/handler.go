package graphql

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/rmarben/usergraph/internal/auth"
)

// Handler sirve el esquema GraphQL sobre gin.
type Handler struct {
	schema graphql.Schema
	log    *zap.Logger
}

func NewHandler(schema graphql.Schema, log *zap.Logger) *Handler {
	return &Handler{schema: schema, log: log}
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Serve endpoint POST /graphql. Los errores de resolver (validación,
// credenciales, autorización) viajan en el array errors de la respuesta;
// el código HTTP es 200 salvo peticiones ilegibles.
func (h *Handler) Serve(c *gin.Context) {
	var req graphqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := WithRemoteAddr(c.Request.Context(), c.ClientIP())

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})

	if len(result.Errors) > 0 {
		h.log.Debug("graphql request finished with errors",
			zap.Int("errors", len(result.Errors)),
		)
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes monta el endpoint GraphQL con el middleware de identidad.
func RegisterRoutes(r *gin.Engine, h *Handler, tokens *auth.TokenManager) {
	r.POST("/graphql", auth.Middleware(tokens), h.Serve)
}
