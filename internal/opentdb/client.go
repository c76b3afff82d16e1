package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL = "https://opentdb.com"
	defaultAmount  = 10
	maxAmount      = 50
)

// RawQuestion mirrors the OpenTriviaDB question payload. Values returned by
// the client are already decoded to plain text.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Params selects which questions api.php returns. Zero values mean "any".
type Params struct {
	Amount     int
	Category   int
	Difficulty string
	Type       string
	Encoding   Encoding
	Token      string
}

// Validate reports whether api.php would accept these params.
func (p Params) Validate() error {
	_, err := p.normalized()
	return err
}

func (p Params) normalized() (Params, error) {
	if p.Amount <= 0 {
		p.Amount = defaultAmount
	}
	if p.Amount > maxAmount {
		p.Amount = maxAmount
	}
	if p.Category < 0 {
		return p, fmt.Errorf("%w: category %d", ErrInvalidParameter, p.Category)
	}

	p.Difficulty = strings.ToLower(strings.TrimSpace(p.Difficulty))
	switch p.Difficulty {
	case "", "easy", "medium", "hard":
	default:
		return p, fmt.Errorf("%w: difficulty %q", ErrInvalidParameter, p.Difficulty)
	}

	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	switch p.Type {
	case "", "multiple", "boolean":
	default:
		return p, fmt.Errorf("%w: type %q", ErrInvalidParameter, p.Type)
	}

	if !p.Encoding.valid() {
		return p, fmt.Errorf("%w: encoding %q", ErrInvalidParameter, p.Encoding)
	}
	return p, nil
}

func (p Params) query() url.Values {
	values := url.Values{}
	values.Set("amount", strconv.Itoa(p.Amount))
	if p.Category > 0 {
		values.Set("category", strconv.Itoa(p.Category))
	}
	if p.Difficulty != "" {
		values.Set("difficulty", p.Difficulty)
	}
	if p.Type != "" {
		values.Set("type", p.Type)
	}
	if p.Encoding != EncodingHTML {
		values.Set("encode", string(p.Encoding))
	}
	if p.Token != "" {
		values.Set("token", p.Token)
	}
	return values
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	}
}

func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	return client
}

func (c *Client) FetchQuestions(ctx context.Context, params Params) ([]RawQuestion, error) {
	params, err := params.normalized()
	if err != nil {
		return nil, err
	}

	var payload apiResponse
	if err := c.getJSON(ctx, "/api.php", params.query(), &payload); err != nil {
		return nil, err
	}

	if payload.ResponseCode != CodeSuccess {
		return nil, &ResponseCodeError{Code: payload.ResponseCode}
	}

	questions := make([]RawQuestion, 0, len(payload.Results))
	for _, raw := range payload.Results {
		decoded, err := decodeQuestion(raw, params.Encoding)
		if err != nil {
			return nil, err
		}
		questions = append(questions, decoded)
	}
	return questions, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, into any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
