package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/minnowkids/minnow-push-api/config"
)

const maxUploadBytes = 10 << 20 // campaign artwork, not product photography

// Upload handles campaign image uploads to Cloudinary. The CDN URL from the
// response goes into the composer's image_url field.
type Upload struct{}

// UploadImageHandler accepts a multipart "image" file, pushes it to the
// campaigns folder on Cloudinary and returns the secure URL
func (u Upload) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		config.ErrorStatus("image file is required", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	// reads CLOUDINARY_URL from the environment
	cld, err := cloudinary.New()
	if err != nil {
		config.ErrorStatus("failed to create cloudinary client", http.StatusInternalServerError, w, err)
		return
	}

	resp, err := cld.Upload.Upload(r.Context(), file, uploader.UploadParams{Folder: "campaigns"})
	if err != nil {
		config.ErrorStatus("failed to upload image", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]string{"url": resp.SecureURL})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
