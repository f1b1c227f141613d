package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/porchlight-social/porchlight/internal/db"
	"github.com/porchlight-social/porchlight/internal/models"
	"github.com/porchlight-social/porchlight/internal/session"
)

// ProfileAPI provides profile read and update methods
type ProfileAPI struct {
	profiles *db.ProfileRepository
}

// NewProfileAPI creates a new profile API
func NewProfileAPI(profiles *db.ProfileRepository) *ProfileAPI {
	return &ProfileAPI{profiles: profiles}
}

// Get handles profile.get; lookup by id or by handle
func (p *ProfileAPI) Get(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return nil, err
	}

	var profile *models.Profile
	if id, ok := int64Param(pMap, "id"); ok {
		profile, err = p.profiles.GetByID(ctx.Request.Context(), id)
	} else if handle, ok := pMap["handle"].(string); ok && handle != "" {
		var matches []*models.Profile
		matches, err = p.profiles.GetByHandles(ctx.Request.Context(), []string{handle})
		if len(matches) > 0 {
			profile = matches[0]
		}
	} else {
		return nil, NewError(ErrInvalidParams, "missing required parameter: id or handle")
	}
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.ErrNotFound
	}
	return gin.H{"profile": profile}, nil
}

// Update handles profile.update. Only the fields present in the params
// change; the handle must stay unique.
func (p *ProfileAPI) Update(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return nil, err
	}
	viewer := session.FromParams(pMap)
	if !viewer.Known() {
		return nil, NewError(ErrInvalidParams, "missing required parameter: viewer_id")
	}

	profile, err := p.profiles.GetByID(ctx.Request.Context(), viewer.AccountID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.ErrNotFound
	}

	if displayName, ok := pMap["display_name"].(string); ok && displayName != "" {
		profile.DisplayName = displayName
	}
	if handle, ok := pMap["handle"].(string); ok && handle != "" {
		profile.Handle.String, profile.Handle.Valid = handle, true
	}
	if bio, ok := pMap["bio"].(string); ok {
		profile.Bio.String, profile.Bio.Valid = bio, bio != ""
	}

	if err := p.profiles.Update(ctx.Request.Context(), profile); err != nil {
		return nil, err
	}
	return gin.H{"profile": profile}, nil
}
