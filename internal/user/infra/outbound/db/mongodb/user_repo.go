package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rmarben/usergraph/internal/shared/platform/paginate"
	userDomain "github.com/rmarben/usergraph/internal/user/domain"
)

// userSchema clasifica los campos consultables de la colección users.
// passwordHash queda fuera a propósito: cualquier petición pública que lo
// referencie se rechaza como clave inválida antes de tocar la base.
var userSchema = paginate.Schema{
	"_id":       {Required: true},
	"username":  {Required: true},
	"email":     {Required: true},
	"roles":     {Array: true},
	"status":    {},
	"createdAt": {Required: true},
	"updatedAt": {},
}

// UserRepoMongoDB implementa la interfaz UserRepository para MongoDB.
type UserRepoMongoDB struct {
	coll      *mongo.Collection
	paginator *paginate.Paginator[mongoUser]
}

// NewUserRepoMongoDB es el constructor del repositorio.
func NewUserRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*UserRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	coll := client.Database(dbName).Collection("users")
	return &UserRepoMongoDB{
		coll: coll,
		paginator: paginate.New[mongoUser](paginate.Config{
			Collection: coll,
			Schema:     userSchema,
			Aliases:    map[string]string{"_id": "id"},
		}),
	}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoUser struct {
	ID           uuid.UUID `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Roles        []string  `bson:"roles"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// --- CRUD ---

func (r *UserRepoMongoDB) Create(ctx context.Context, u *userDomain.User) error {
	// email y username son únicos
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"$or": []bson.M{{"email": u.Email}, {"username": u.Username}},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return userDomain.ErrUserAlreadyExists
	}

	if _, err := r.coll.InsertOne(ctx, toMongoUser(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return userDomain.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepoMongoDB) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepoMongoDB) findOne(ctx context.Context, filter bson.M) (*userDomain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userDomain.ErrUserNotFound
		}
		return nil, err
	}
	return fromMongoUser(&mu), nil
}

func (r *UserRepoMongoDB) Update(ctx context.Context, u *userDomain.User) error {
	mu := toMongoUser(u)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": mu.ID}, bson.M{"$set": mu})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return userDomain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return userDomain.ErrUserNotFound
	}
	return nil
}

// --- Paginación ---

// List delega en el paginador genérico: la petición pública se valida contra
// userSchema y el filtro trusted se fusiona tal cual.
func (r *UserRepoMongoDB) List(ctx context.Context, req paginate.Request, trusted map[string]interface{}) (*paginate.Page[*userDomain.User], error) {
	page, err := r.paginator.Paginate(ctx, req, bson.M(trusted))
	if err != nil {
		return nil, err
	}

	users := make([]*userDomain.User, 0, len(page.Data))
	for i := range page.Data {
		users = append(users, fromMongoUser(&page.Data[i]))
	}
	return &paginate.Page[*userDomain.User]{Total: page.Total, Data: users}, nil
}

// --- Helpers de Mapeo y Conversión ---

func toMongoUser(u *userDomain.User) *mongoUser {
	return &mongoUser{
		ID: u.ID, Username: u.Username, Email: u.Email, PasswordHash: u.PasswordHash,
		Roles: u.Roles, Status: u.Status, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func fromMongoUser(mu *mongoUser) *userDomain.User {
	return &userDomain.User{
		ID: mu.ID, Username: mu.Username, Email: mu.Email, PasswordHash: mu.PasswordHash,
		Roles: mu.Roles, Status: mu.Status, CreatedAt: mu.CreatedAt, UpdatedAt: mu.UpdatedAt,
	}
}

// Verificación estática
var _ userDomain.UserRepository = (*UserRepoMongoDB)(nil)
