package repo

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"feedback-api/internal/domain"
)

// keysetCursor — позиция последней отданной строки. Клиенту уходит в base64url.
type keysetCursor struct {
	Signature string `json:"s"`
	Value     string `json:"v"`
	ID        string `json:"id"`
}

// querySignature привязывает курсор к локации, фильтру и сортировке.
func querySignature(req domain.FetchRequest) string {
	t := ""
	if req.Type != nil {
		t = string(*req.Type)
	}
	return strings.Join([]string{req.LocationID, t, req.Sort.Property, strings.ToLower(req.Sort.Direction)}, "|")
}

func encodeCursor(c keysetCursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeCursor(token string, req domain.FetchRequest) (keysetCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return keysetCursor{}, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	var c keysetCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return keysetCursor{}, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	if c.Signature != querySignature(req) {
		return keysetCursor{}, fmt.Errorf("%w: курсор выдан для другого запроса", domain.ErrInvalidCursor)
	}
	return c, nil
}
