package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/globals"
	"tattootime/middleware"
	"tattootime/models"
	"tattootime/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user account. Every account starts with the customer
// role; admin is granted separately.
func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if creds.Email == "" || !strings.Contains(creds.Email, "@") {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "A valid email is required"))
		return
	}
	if len(creds.Password) < 8 {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Password must be at least 8 characters"))
		return
	}
	if creds.Username == "" {
		creds.Username = creds.Email[:strings.Index(creds.Email, "@")]
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := db.UserCollection.FindOne(ctx, bson.M{"email": creds.Email}).Err(); err == nil {
		apperr.Respond(w, apperr.E(apperr.AlreadyExists, "An account with this email already exists"))
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to check existing accounts", err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to create account", err))
		return
	}

	user := models.User{
		ID:           utils.GetUUID(),
		Username:     creds.Username,
		Email:        creds.Email,
		PasswordHash: string(hash),
		Roles:        []string{"customer"},
		CreatedAt:    time.Now(),
	}
	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to create account", err))
		return
	}

	token, err := issueToken(user)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to issue token", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"token":  token,
		"userId": user.ID,
		"roles":  user.Roles,
	})
}

// Login verifies the password and issues a JWT carrying the user's roles.
func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Invalid email or password"))
		return
	}
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to load account", err))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Invalid email or password"))
		return
	}

	token, err := issueToken(user)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to issue token", err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = db.UserCollection.UpdateOne(ctx, bson.M{"id": user.ID},
			bson.M{"$set": bson.M{"lastLogin": time.Now()}})
	}()

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"userId": user.ID,
		"roles":  user.Roles,
	})
}

func issueToken(user models.User) (string, error) {
	claims := middleware.Claims{
		Username: user.Email,
		UserID:   user.ID,
		Role:     user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}
