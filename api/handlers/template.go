package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minnowkids/minnow-push-api/config"
	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/models"
)

// Template exported for testing purposes
type Template struct {
	DB databases.TemplateDatabase
}

type templateRequest struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	ImageURL     string `json:"image_url,omitempty"`
	Deeplink     string `json:"deeplink,omitempty"`
	Audience     string `json:"audience"`
	CategorySlug string `json:"category_slug,omitempty"`
	CreatedBy    string `json:"created_by,omitempty"`
}

// CreateTemplateHandler saves a reusable campaign prototype
func (t Template) CreateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode template body", http.StatusBadRequest, w, err)
		return
	}

	if req.Name == "" || req.Title == "" || req.Body == "" {
		config.ErrorStatus("template name, title and body are required", http.StatusBadRequest, w, errors.New("missing required fields"))
		return
	}
	if req.Audience == "" {
		req.Audience = models.AudienceAll
	}
	if !models.ValidAudience(req.Audience) {
		config.ErrorStatus("unknown template audience", http.StatusBadRequest, w, errors.New("audience: "+req.Audience))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	tmpl := models.PushTemplate{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Title:        req.Title,
		Body:         req.Body,
		ImageURL:     req.ImageURL,
		Deeplink:     req.Deeplink,
		Audience:     req.Audience,
		CategorySlug: req.CategorySlug,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := t.DB.InsertOne(r.Context(), tmpl); err != nil {
		config.ErrorStatus("failed to insert template", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(tmpl)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// TemplateHandler returns all templates sorted by name
func (t Template) TemplateHandler(w http.ResponseWriter, r *http.Request) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	dbResp, err := t.DB.Find(r.Context(), bson.D{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get templates", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.PushTemplate{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// TemplateByIDHandler returns a template by ID
func (t Template) TemplateByIDHandler(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["template_id"]

	tID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := t.DB.FindOne(r.Context(), bson.M{"_id": tID})
	if err != nil {
		config.ErrorStatus("failed to get template by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateTemplateHandler replaces the editable fields of a template
func (t Template) UpdateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["template_id"]

	tID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode template body", http.StatusBadRequest, w, err)
		return
	}
	if req.Audience != "" && !models.ValidAudience(req.Audience) {
		config.ErrorStatus("unknown template audience", http.StatusBadRequest, w, errors.New("audience: "+req.Audience))
		return
	}

	update := bson.M{"$set": bson.M{
		"name":         req.Name,
		"title":        req.Title,
		"body":         req.Body,
		"imageUrl":     req.ImageURL,
		"deeplink":     req.Deeplink,
		"audience":     req.Audience,
		"categorySlug": req.CategorySlug,
		"updatedAt":    primitive.NewDateTimeFromTime(time.Now()),
	}}

	res, err := t.DB.UpdateOne(r.Context(), bson.M{"_id": tID}, update)
	if err != nil {
		config.ErrorStatus("failed to update template", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("template not found", http.StatusNotFound, w, errors.New("no template matched"))
		return
	}

	b, err := json.Marshal(map[string]int64{"modified": res.ModifiedCount})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteTemplateHandler removes a template by ID
func (t Template) DeleteTemplateHandler(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["template_id"]

	tID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := t.DB.DeleteOne(r.Context(), bson.M{"_id": tID}); err != nil {
		config.ErrorStatus("failed to delete template", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}
