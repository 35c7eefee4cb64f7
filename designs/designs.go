package designs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/models"
	"tattootime/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	_ "image/gif"
	_ "image/png"
)

const (
	uploadDir    = "./static/uploads/designs"
	thumbWidth   = 320
	maxImageSize = 10 << 20
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadReferenceImage attaches a tattoo design reference to an appointment.
// The original is kept as uploaded; a 320px thumbnail is written alongside it
// for the calendar view.
func UploadReferenceImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Sign in required"))
		return
	}
	appointmentID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var appt models.Appointment
	err := db.AppointmentsCollection.FindOne(ctx, bson.M{"id": appointmentID}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apperr.Respond(w, apperr.E(apperr.NotFound, "The requested appointment does not exist"))
		return
	}
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to load appointment", err))
		return
	}
	if appt.UserID != userID && !utils.IsAdmin(r) {
		apperr.Respond(w, apperr.E(apperr.PermissionDenied, "This is not your appointment"))
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid upload"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "An image file is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Unsupported image type"))
		return
	}

	buf, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil || len(buf) > maxImageSize {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Image too large"))
		return
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "File is not a decodable image"))
		return
	}

	name := utils.GenerateRandomDigitString(16)
	origName := name + ext
	thumbName := name + "_thumb.jpg"

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to store image", err))
		return
	}
	if err := os.WriteFile(filepath.Join(uploadDir, origName), buf, 0o644); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to store image", err))
		return
	}
	if err := writeThumb(img, filepath.Join(uploadDir, thumbName)); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to store thumbnail", err))
		return
	}

	imageURL := fmt.Sprintf("/uploads/designs/%s", origName)
	if _, err := db.AppointmentsCollection.UpdateOne(ctx,
		bson.M{"id": appointmentID},
		bson.M{
			"$push": bson.M{"tattooDetails.referenceImages": imageURL},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to attach image", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"imageUrl": imageURL,
		"thumbUrl": fmt.Sprintf("/uploads/designs/%s", thumbName),
	})
}

func writeThumb(img image.Image, path string) error {
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85})
}
