package opentdb

import (
	"encoding/base64"
	"fmt"
	"html"
	"net/url"
	"strings"
)

// Encoding is the value of the encode query parameter.
type Encoding string

const (
	EncodingHTML    Encoding = ""
	EncodingURL3986 Encoding = "url3986"
	EncodingBase64  Encoding = "base64"
)

// DefaultEncoding is requested unless the caller picks another one.
const DefaultEncoding = EncodingURL3986

func (e Encoding) valid() bool {
	switch e {
	case EncodingHTML, EncodingURL3986, EncodingBase64:
		return true
	default:
		return false
	}
}

// ParseEncoding accepts the names used on the command line.
func ParseEncoding(value string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "html", "default":
		return EncodingHTML, nil
	case "url3986", "url":
		return EncodingURL3986, nil
	case "base64":
		return EncodingBase64, nil
	default:
		return "", fmt.Errorf("%w: encoding %q", ErrInvalidParameter, value)
	}
}

func decodeText(value string, encoding Encoding) (string, error) {
	switch encoding {
	case EncodingURL3986:
		decoded, err := url.PathUnescape(value)
		if err != nil {
			return "", fmt.Errorf("decode url3986 text: %w", err)
		}
		return decoded, nil
	case EncodingBase64:
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return "", fmt.Errorf("decode base64 text: %w", err)
		}
		return string(decoded), nil
	default:
		return html.UnescapeString(value), nil
	}
}

func decodeQuestion(raw RawQuestion, encoding Encoding) (RawQuestion, error) {
	fields := []*string{&raw.Type, &raw.Difficulty, &raw.Category, &raw.Question, &raw.CorrectAnswer}
	for _, field := range fields {
		decoded, err := decodeText(*field, encoding)
		if err != nil {
			return RawQuestion{}, err
		}
		*field = decoded
	}

	incorrect := make([]string, 0, len(raw.IncorrectAnswers))
	for _, answer := range raw.IncorrectAnswers {
		decoded, err := decodeText(answer, encoding)
		if err != nil {
			return RawQuestion{}, err
		}
		incorrect = append(incorrect, decoded)
	}
	raw.IncorrectAnswers = incorrect
	return raw, nil
}
