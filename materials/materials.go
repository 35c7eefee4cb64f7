package materials

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateMaterial registers a new inventory item.
func CreateMaterial(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var m models.Material
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}
	if m.Name == "" || m.Unit == "" {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Required fields missing: name, unit"))
		return
	}
	if m.CurrentStock < 0 || m.CostPerUnit < 0 {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Stock and cost cannot be negative"))
		return
	}
	if m.Category == "" {
		m.Category = "other"
	}

	m.ID = utils.GenerateRandomDigitString(22)
	m.IsActive = true
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.MaterialsCollection.InsertOne(ctx, m); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to create material", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"material": m})
}

func ListMaterials(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"isActive": true}
	if cat := r.URL.Query().Get("category"); cat != "" {
		filter["category"] = cat
	}
	if r.URL.Query().Get("lowStock") == "true" {
		filter["$expr"] = bson.M{"$lte": bson.A{"$currentStock", "$minimumStock"}}
	}

	skip, limit := utils.ParsePagination(r, 100, 500)
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "name", Value: 1}})

	list, err := utils.FindAndDecode[models.Material](ctx, db.MaterialsCollection, filter, opts)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to retrieve materials", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"materials": list})
}

// UpdateMaterial patches stock levels, cost or supplier of one item.
func UpdateMaterial(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch struct {
		CurrentStock *float64 `json:"currentStock"`
		MinimumStock *float64 `json:"minimumStock"`
		CostPerUnit  *float64 `json:"costPerUnit"`
		Supplier     *string  `json:"supplier"`
		IsActive     *bool    `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if patch.CurrentStock != nil {
		if *patch.CurrentStock < 0 {
			apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Stock cannot be negative"))
			return
		}
		set["currentStock"] = *patch.CurrentStock
		set["lastRestocked"] = time.Now()
	}
	if patch.MinimumStock != nil {
		set["minimumStock"] = *patch.MinimumStock
	}
	if patch.CostPerUnit != nil {
		set["costPerUnit"] = *patch.CostPerUnit
	}
	if patch.Supplier != nil {
		set["supplier"] = *patch.Supplier
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.MaterialsCollection.UpdateOne(ctx, bson.M{"id": ps.ByName("id")}, bson.M{"$set": set})
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to update material", err))
		return
	}
	if res.MatchedCount == 0 {
		apperr.Respond(w, apperr.E(apperr.NotFound, "The requested material does not exist"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

type usageLine struct {
	MaterialID   string  `json:"materialId"`
	QuantityUsed float64 `json:"quantityUsed"`
}

type usageRequest struct {
	AppointmentID string      `json:"appointmentId"`
	Materials     []usageLine `json:"materials"`
}

// RecordUsage books material consumption against an appointment. Each stock
// decrement is guarded so it never drives currentStock negative; the first
// item that would do so aborts the whole recording.
func RecordUsage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	var req usageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}
	if req.AppointmentID == "" || len(req.Materials) == 0 {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Required fields missing: appointmentId, materials"))
		return
	}
	for _, item := range req.Materials {
		if item.MaterialID == "" || item.QuantityUsed <= 0 {
			apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Each material needs materialId and a positive quantityUsed"))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	usage, err := recordUsage(ctx, NewMongoStore(), req.AppointmentID, req.Materials, userID)
	if err != nil {
		apperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"totalCost": usage.TotalCost,
		"message":   "Material usage recorded",
	})
}

// recordUsage runs the usage transaction: every stock decrement, the
// appointment update and the history entry commit together or not at all.
func recordUsage(ctx context.Context, store Store, appointmentID string, lines []usageLine, recordedBy string) (models.MaterialsUsed, error) {
	appt, err := store.AppointmentByID(ctx, appointmentID)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return models.MaterialsUsed{}, ae
		}
		return models.MaterialsUsed{}, apperr.Wrap(apperr.Internal, "Failed to load appointment", err)
	}

	var usage models.MaterialsUsed
	err = store.WithTxn(ctx, func(ctx context.Context) error {
		now := time.Now()
		usage = models.MaterialsUsed{}
		for _, line := range lines {
			mat, err := store.MaterialByID(ctx, line.MaterialID)
			if err != nil {
				return err
			}
			if err := store.DecrementStock(ctx, line.MaterialID, line.QuantityUsed); err != nil {
				if apperr.KindOf(err) == apperr.FailedPrecondition {
					return apperr.E(apperr.FailedPrecondition, "Not enough stock of "+mat.Name)
				}
				return err
			}
			usage.Items = append(usage.Items, buildUsageItem(*mat, line.QuantityUsed, now))
			usage.TotalCost += mat.CostPerUnit * line.QuantityUsed
		}

		if err := store.SetAppointmentMaterials(ctx, appointmentID, usage); err != nil {
			return err
		}

		return store.InsertHistory(ctx, &models.CustomerHistory{
			ID:          utils.GenerateRandomDigitString(22),
			UserID:      appt.UserID,
			Type:        "material_usage",
			ReferenceID: appointmentID,
			Description: "Materials recorded for appointment",
			Metadata: map[string]any{
				"totalCost":  usage.TotalCost,
				"itemCount":  len(usage.Items),
				"recordedBy": recordedBy,
			},
		})
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return models.MaterialsUsed{}, ae
		}
		return models.MaterialsUsed{}, apperr.Wrap(apperr.Internal, "Failed to record usage", err)
	}
	return usage, nil
}

func buildUsageItem(mat models.Material, qty float64, at time.Time) models.UsageItem {
	return models.UsageItem{
		MaterialID:   mat.ID,
		MaterialName: mat.Name,
		QuantityUsed: qty,
		Unit:         mat.Unit,
		CostPerUnit:  mat.CostPerUnit,
		TotalCost:    mat.CostPerUnit * qty,
		UsedAt:       at,
	}
}
