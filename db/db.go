package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	SlotsCollection              *mongo.Collection
	AppointmentsCollection       *mongo.Collection
	PricingRulesCollection       *mongo.Collection
	CustomerHistoryCollection    *mongo.Collection
	NotificationsCollection      *mongo.Collection
	MaterialsCollection          *mongo.Collection
	PaymentsCollection           *mongo.Collection
	ReviewsCollection            *mongo.Collection
	AftercareTemplatesCollection *mongo.Collection
	MailCollection               *mongo.Collection
	UserCollection               *mongo.Collection
	Client                       *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "tattootime"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database(dbName)
	SlotsCollection = database.Collection("slots")
	AppointmentsCollection = database.Collection("appointments")
	PricingRulesCollection = database.Collection("pricing_rules")
	CustomerHistoryCollection = database.Collection("customer_history")
	NotificationsCollection = database.Collection("notifications")
	MaterialsCollection = database.Collection("materials")
	PaymentsCollection = database.Collection("payments")
	ReviewsCollection = database.Collection("reviews")
	AftercareTemplatesCollection = database.Collection("aftercare_templates")
	MailCollection = database.Collection("mail")
	UserCollection = database.Collection("users")
}
