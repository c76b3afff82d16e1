package opentdb

import (
	"context"
	"errors"
	"net/url"
)

type tokenResponse struct {
	ResponseCode    int    `json:"response_code"`
	ResponseMessage string `json:"response_message"`
	Token           string `json:"token"`
}

// RequestToken asks for a session token. Questions fetched with a token are
// not repeated until the token is exhausted or reset.
func (c *Client) RequestToken(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("command", "request")
	return c.tokenCommand(ctx, query)
}

// ResetToken clears the served-question history of token.
func (c *Client) ResetToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrTokenNotFound
	}
	query := url.Values{}
	query.Set("command", "reset")
	query.Set("token", token)
	return c.tokenCommand(ctx, query)
}

func (c *Client) tokenCommand(ctx context.Context, query url.Values) (string, error) {
	var payload tokenResponse
	if err := c.getJSON(ctx, "/api_token.php", query, &payload); err != nil {
		return "", err
	}
	if payload.ResponseCode != CodeSuccess {
		return "", &ResponseCodeError{Code: payload.ResponseCode}
	}
	if payload.Token == "" {
		return "", errors.New("opentdb: token response without token")
	}
	return payload.Token, nil
}
