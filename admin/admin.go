package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/models"
	"tattootime/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddAdminRole grants the admin role to the user behind an email address.
// The role lands in the JWT the next time that user logs in.
func AddAdminRole(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "email is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"email": req.Email},
		bson.M{"$addToSet": bson.M{"roles": "admin"}},
	)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to update user roles", err))
		return
	}
	if res.MatchedCount == 0 {
		apperr.Respond(w, apperr.E(apperr.NotFound, "No user with that email"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Admin role granted to " + req.Email,
	})
}

// defaultPricingRuleID pins the seeded rule to one document so repeated
// initialization upserts instead of multiplying rules.
const defaultPricingRuleID = "default-pricing-rule"

// InitializeDefaultData seeds the pricing rule, a starter inventory and the
// aftercare template. Safe to call more than once.
func InitializeDefaultData(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := seedPricingRule(ctx); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to seed pricing rule", err))
		return
	}
	if err := seedMaterials(ctx); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to seed materials", err))
		return
	}
	if err := seedAftercareTemplate(ctx); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to seed aftercare template", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Default data initialized",
	})
}

// defaultPricingRule carries the studio's standard multiplier vocabulary.
// The keys here are the ones booking clients send; a key missing from the
// rule fails open to 1.0 in the calculator, so renaming one silently changes
// prices.
func defaultPricingRule(now time.Time) models.PricingRule {
	return models.PricingRule{
		ID:          defaultPricingRuleID,
		Name:        "Standard Pricing",
		Description: "Default studio pricing",
		BasePrice:   120,
		BodyPartMultipliers: map[string]float64{
			"arm":   1.0,
			"leg":   1.0,
			"back":  1.2,
			"chest": 1.3,
			"ribs":  1.4,
			"neck":  1.5,
			"face":  2.0,
			"hand":  1.8,
			"foot":  1.6,
		},
		SizeMultipliers: map[string]float64{
			"small":       0.8,
			"medium":      1.0,
			"large":       1.3,
			"extra_large": 1.6,
		},
		StyleMultipliers: map[string]float64{
			"traditional": 1.0,
			"realistic":   1.4,
			"watercolor":  1.3,
			"geometric":   1.1,
			"minimalist":  0.9,
			"japanese":    1.2,
			"tribal":      1.0,
			"lettering":   0.8,
		},
		ComplexityMultipliers: map[string]float64{
			"simple":       0.9,
			"medium":       1.0,
			"complex":      1.3,
			"very_complex": 1.6,
		},
		DepositPercentage: 30,
		IsActive:          true,
		UpdatedAt:         now,
	}
}

func seedPricingRule(ctx context.Context) error {
	now := time.Now()
	rule := defaultPricingRule(now)

	// Fixed id upsert keeps exactly one default rule; everything else is
	// deactivated so a single rule stays active.
	opts := options.Update().SetUpsert(true)
	_, err := db.PricingRulesCollection.UpdateOne(ctx,
		bson.M{"id": defaultPricingRuleID},
		bson.M{
			"$set":         ruleAsUpdate(rule),
			"$setOnInsert": bson.M{"createdAt": now},
		}, opts)
	if err != nil {
		return err
	}
	_, err = db.PricingRulesCollection.UpdateMany(ctx,
		bson.M{"id": bson.M{"$ne": defaultPricingRuleID}},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
	)
	return err
}

func ruleAsUpdate(rule models.PricingRule) bson.M {
	return bson.M{
		"name":                  rule.Name,
		"description":           rule.Description,
		"basePrice":             rule.BasePrice,
		"bodyPartMultipliers":   rule.BodyPartMultipliers,
		"sizeMultipliers":       rule.SizeMultipliers,
		"styleMultipliers":      rule.StyleMultipliers,
		"complexityMultipliers": rule.ComplexityMultipliers,
		"depositPercentage":     rule.DepositPercentage,
		"isActive":              rule.IsActive,
		"updatedAt":             rule.UpdatedAt,
	}
}

func seedMaterials(ctx context.Context) error {
	now := time.Now()
	defaults := []models.Material{
		{Name: "Black Ink", Category: "ink", Unit: "ml", CurrentStock: 500, MinimumStock: 100, CostPerUnit: 2.5},
		{Name: "Needle Cartridges 3RL", Category: "needle", Unit: "pieces", CurrentStock: 200, MinimumStock: 50, CostPerUnit: 1.2},
		{Name: "Disposable Gloves", Category: "disposable", Unit: "pairs", CurrentStock: 1000, MinimumStock: 200, CostPerUnit: 0.15},
	}
	for _, m := range defaults {
		err := db.MaterialsCollection.FindOne(ctx, bson.M{"name": m.Name}).Err()
		if err == nil {
			continue
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		m.ID = utils.GenerateRandomDigitString(22)
		m.IsActive = true
		m.CreatedAt = now
		m.UpdatedAt = now
		if _, err := db.MaterialsCollection.InsertOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func seedAftercareTemplate(ctx context.Context) error {
	now := time.Now()
	tmpl := models.AftercareTemplate{
		ID:    "default-aftercare",
		Name:  "standard",
		Title: "Tattoo Aftercare Instructions",
		Content: "Keep the bandage on for 2-4 hours. Wash gently with lukewarm water " +
			"and fragrance-free soap. Apply a thin layer of aftercare cream twice a day. " +
			"Avoid direct sunlight, swimming and saunas for two weeks.",
		IsActive:  true,
		UpdatedAt: now,
	}
	opts := options.Update().SetUpsert(true)
	_, err := db.AftercareTemplatesCollection.UpdateOne(ctx,
		bson.M{"id": tmpl.ID},
		bson.M{
			"$set": bson.M{
				"name":      tmpl.Name,
				"title":     tmpl.Title,
				"content":   tmpl.Content,
				"isActive":  tmpl.IsActive,
				"updatedAt": tmpl.UpdatedAt,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		}, opts)
	return err
}
