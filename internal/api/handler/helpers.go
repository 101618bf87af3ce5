package handler

import (
	"encoding/json"
	"net/http"

	"crackmehub/internal/domain/model"
)

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// ratingKindFromParam maps a URL segment onto a rating kind. Unknown values
// fall through unchanged and are rejected by the service's kind validation.
func ratingKindFromParam(param string) model.RatingKind {
	switch param {
	case "difficulty":
		return model.RatingDifficulty
	case "quality":
		return model.RatingQuality
	default:
		return model.RatingKind(param)
	}
}
