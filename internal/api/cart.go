package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"storefront-client/internal/domain"
)

// remoteCartBody accepts both {"items": [...]} and a bare array.
type remoteCartBody struct {
	Items []domain.CartLine
}

func (b *remoteCartBody) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return errors.New("cart payload is null")
	}
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &b.Items)
	}

	var obj struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if len(obj.Items) == 0 || bytes.Equal(obj.Items, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(obj.Items, &b.Items); err != nil {
		return fmt.Errorf("items: %w", err)
	}
	return nil
}

// FetchCart returns the server-held cart. Missing or null items mean an
// empty cart; an empty or null body is malformed, so it never wipes the
// local cart.
func (c *Client) FetchCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var body remoteCartBody
	if err := c.getRequired(ctx, "cart.fetch", "/cartState/cart/"+url.PathEscape(userID), &body); err != nil {
		return nil, err
	}
	return domain.CloneLines(body.Items), nil
}

func (c *Client) SaveCart(ctx context.Context, userID string, items []domain.CartLine) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/cartState/cart/save",
		endpoint: "cart.save",
		body:     domain.SaveCartRequest{UserID: userID, Items: domain.CloneLines(items)},
	}, nil)
}
