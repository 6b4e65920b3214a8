package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trainerhub/poketrainer/internal"
)

// Currency returns the coin balance of userID
func (c *Client) Currency(ctx context.Context, userID string) (*internal.Currency, error) {
	var out internal.Currency
	path := "/currency/" + url.PathEscape(userID) + "/get"
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateProfile asks the backend to render the trainer's profile image
func (c *Client) GenerateProfile(ctx context.Context) (data []byte, contentType string, err error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/kamehameha/generate_profile", auth: true})
	if err != nil {
		return nil, "", err
	}
	return resp.body, resp.contentType, nil
}

// Catalog lists the purchasable items of kind. Items carry their listing index.
func (c *Client) Catalog(ctx context.Context, kind internal.CatalogKind) ([]internal.CatalogItem, error) {
	items, err := getList[internal.CatalogItem](ctx, c, "/kamehameha/"+string(kind), false)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Index = i
	}
	return items, nil
}

// Buy purchases a catalog item. key is the name for cards and backgrounds
// and the decimal listing index for titles.
func (c *Client) Buy(ctx context.Context, kind internal.CatalogKind, key string) error {
	if kind == internal.KindTitle {
		if _, err := strconv.Atoi(key); err != nil {
			return fmt.Errorf("titles are bought by index, got %q", key)
		}
	}
	path := "/kamehameha/buy_" + string(kind) + "/" + url.PathEscape(key)
	return c.doJSON(ctx, http.MethodPost, path, true, nil, nil)
}

// MarketAll lists every marketplace listing
func (c *Client) MarketAll(ctx context.Context) ([]internal.MarketListing, error) {
	return getList[internal.MarketListing](ctx, c, "/market/all", true)
}

// MarketOwned lists the listings owned by the current trainer
func (c *Client) MarketOwned(ctx context.Context) ([]internal.MarketListing, error) {
	return getList[internal.MarketListing](ctx, c, "/market/owned", true)
}

// MarketBuy purchases the listing with id
func (c *Client) MarketBuy(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/market/buy/"+url.PathEscape(id), true, nil, nil)
}

// MarketAdd creates a listing with its image
func (c *Client) MarketAdd(ctx context.Context, listing internal.NewListing) error {
	form := newMultipartForm()
	form.field("name", listing.Name)
	form.field("price", strconv.FormatFloat(listing.Price, 'f', -1, 64))
	form.field("type", listing.Type)
	form.file("image", listing.ImageName, listing.Image)
	body, contentType, err := form.close()
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{method: http.MethodPost, path: "/market/add", auth: true, body: body, contentType: contentType})
	return err
}

// ProfilePicture fetches the uploaded profile picture
func (c *Client) ProfilePicture(ctx context.Context) (data []byte, contentType string, err error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/user/mypfp", auth: true})
	if err != nil {
		return nil, "", err
	}
	return resp.body, resp.contentType, nil
}

// UploadProfilePicture replaces the profile picture with data
func (c *Client) UploadProfilePicture(ctx context.Context, filename string, data []byte) error {
	form := newMultipartForm()
	form.file("image", filename, data)
	body, contentType, err := form.close()
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{method: http.MethodPost, path: "/user/uploadpfp", auth: true, body: body, contentType: contentType})
	return err
}

// DeleteProfilePicture removes the profile picture
func (c *Client) DeleteProfilePicture(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/user/deletepfp", true, nil, nil)
}
