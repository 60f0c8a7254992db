package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/rmarben/usergraph/internal/user/domain"
)

// NewSchema construye el esquema GraphQL completo sobre el resolver.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	sortDirection := graphql.NewEnum(graphql.EnumConfig{
		Name: "SortDirection",
		Values: graphql.EnumValueConfigMap{
			// los valores internos son los tokens que entiende el paginador
			"asc":  &graphql.EnumValueConfig{Value: "asc"},
			"desc": &graphql.EnumValueConfig{Value: "desc"},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.User).ID.String(), nil
				},
			},
			"username":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"roles":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"status":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	userPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UserPage",
		Fields: graphql.Fields{
			"total": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"data":  &graphql.Field{Type: graphql.NewList(userType)},
		},
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"user":  &graphql.Field{Type: userType},
		},
	})

	searchInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserSearchInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"status":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	sortInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserSortInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username":  &graphql.InputObjectFieldConfig{Type: sortDirection},
			"email":     &graphql.InputObjectFieldConfig{Type: sortDirection},
			"status":    &graphql.InputObjectFieldConfig{Type: sortDirection},
			"createdAt": &graphql.InputObjectFieldConfig{Type: sortDirection},
		},
	})

	// cada campo admite uno o varios literales; el paginador decide la
	// semántica según el tipo del campo en el esquema
	filterValuesInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserFilterValuesInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":       &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
			"username": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
			"roles":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
			"status":   &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
		},
	})

	filterInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserFilterInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"include": &graphql.InputObjectFieldConfig{Type: filterValuesInput},
			"exclude": &graphql.InputObjectFieldConfig{Type: filterValuesInput},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.resolveMe,
			},
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveUser,
			},
			"users": &graphql.Field{
				Type: userPageType,
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageLimit},
					"search": &graphql.ArgumentConfig{Type: searchInput},
					"sort":   &graphql.ArgumentConfig{Type: sortInput},
					"filter": &graphql.ArgumentConfig{Type: filterInput},
				},
				Resolve: r.resolveUsers,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveRegister,
			},
			"login": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveLogin,
			},
			"updateUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"username": &graphql.ArgumentConfig{Type: graphql.String},
					"email":    &graphql.ArgumentConfig{Type: graphql.String},
					"status":   &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.resolveUpdateUser,
			},
			"deleteUser": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveDeleteUser,
			},
			"changePassword": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"current": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"new":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveChangePassword,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
