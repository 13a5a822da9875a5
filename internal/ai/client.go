package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"

	maxResponseBodyBytes = 4 * 1024 * 1024
)

// Completer is the outbound chat backend. The retry loop only depends on this.
type Completer interface {
	CreateChatCompletion(ctx context.Context, request ChatRequest) (ChatCompletion, error)
}

type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

func (apiError *APIError) Error() string {
	if apiError == nil {
		return "chat backend error"
	}
	message := strings.TrimSpace(apiError.Message)
	if message == "" {
		message = http.StatusText(apiError.StatusCode)
	}
	if apiError.StatusCode == http.StatusTooManyRequests && !strings.Contains(strings.ToLower(message), "rate limit") {
		message = "rate limit exceeded: " + message
	}
	return fmt.Sprintf("chat backend status %d: %s", apiError.StatusCode, message)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL string, apiKey string) *Client {
	normalizedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if normalizedBaseURL == "" {
		normalizedBaseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		baseURL: normalizedBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
	}
}

// CreateChatCompletion has no client-level timeout; the caller bounds each call
// through ctx.
func (client *Client) CreateChatCompletion(ctx context.Context, chatRequest ChatRequest) (ChatCompletion, error) {
	if len(chatRequest.Messages) == 0 {
		return ChatCompletion{}, fmt.Errorf("chat request requires at least one message")
	}

	requestBody, marshalError := json.Marshal(chatRequest)
	if marshalError != nil {
		return ChatCompletion{}, fmt.Errorf("marshal chat request: %w", marshalError)
	}

	request, requestError := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+"/chat/completions", bytes.NewReader(requestBody))
	if requestError != nil {
		return ChatCompletion{}, fmt.Errorf("create chat request: %w", requestError)
	}
	request.Header.Set("Content-Type", "application/json")
	if client.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+client.apiKey)
	}

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return ChatCompletion{}, fmt.Errorf("call chat backend: %w", responseError)
	}
	body, readError := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes))
	response.Body.Close()
	if readError != nil {
		return ChatCompletion{}, fmt.Errorf("read chat response: %w", readError)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return ChatCompletion{}, decodeAPIError(response.StatusCode, body)
	}

	var completion ChatCompletion
	if unmarshalError := json.Unmarshal(body, &completion); unmarshalError != nil {
		return ChatCompletion{}, fmt.Errorf("decode chat payload: %w", unmarshalError)
	}
	return completion, nil
}

func decodeAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var envelope apiErrorEnvelope
	if json.Unmarshal(body, &envelope) == nil && strings.TrimSpace(envelope.Error.Message) != "" {
		apiError.Message = envelope.Error.Message
		apiError.Type = envelope.Error.Type
		if envelope.Error.Code != nil {
			apiError.Code = fmt.Sprint(envelope.Error.Code)
		}
		return apiError
	}

	apiError.Message = strings.TrimSpace(string(body))
	return apiError
}
