package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trainerhub/poketrainer/internal"
)

// Users lists all accounts (admin only)
func (c *Client) Users(ctx context.Context) ([]internal.User, error) {
	return getList[internal.User](ctx, c, "/admin/user/get_all_users", true)
}

// UpdateUser changes the fields set in update on account id (admin only)
func (c *Client) UpdateUser(ctx context.Context, id string, update internal.UserUpdate) error {
	return c.doJSON(ctx, http.MethodPut, "/admin/user/update_user/"+url.PathEscape(id), true, update, nil)
}

// DeleteUser removes account id (admin only)
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/user/delete_user/"+url.PathEscape(id), true, nil, nil)
}

// Spawn asks the spawner for a new Pokémon
func (c *Client) Spawn(ctx context.Context) (*internal.Pokemon, error) {
	var out struct {
		internal.Pokemon
		Wrapped *internal.Pokemon `json:"pokemon"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/pokemon_spawner/spawn", true, nil, &out); err != nil {
		return nil, err
	}
	if out.Wrapped != nil {
		return out.Wrapped, nil
	}
	return &out.Pokemon, nil
}

// UserPokemons lists the trainer's Pokémon
func (c *Client) UserPokemons(ctx context.Context) ([]internal.Pokemon, error) {
	return getList[internal.Pokemon](ctx, c, "/pokemon_spawner/user_pokemons", true)
}

// DeletePokemon releases Pokémon id
func (c *Client) DeletePokemon(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/pokemon_spawner/delete_pokemon/"+url.PathEscape(id), true, nil, nil)
}
