package notifysync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/notifications"
)

// HTTPSource talks to the notification endpoints of the REST API.
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSource takes the API root, e.g. http://localhost:3000/api/v1.
func NewHTTPSource(baseURL, token string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a refusal reported by the server envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (s *HTTPSource) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unexpected response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: resp.Status}
		if env.Error != nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// MaxSyncPages bounds one List call. Records past it are treated as gone
// by Merge until a later sync reaches them.
const MaxSyncPages = 20

// List fetches every unexpired notification, newest first, page by page.
func (s *HTTPSource) List(ctx context.Context) ([]Notification, error) {
	var out []Notification
	for page := 1; page <= MaxSyncPages; page++ {
		var p notifications.Page
		path := fmt.Sprintf("/notifications?page=%d&limit=%d", page, notifications.MaxLimit)
		if err := s.do(ctx, http.MethodGet, path, &p); err != nil {
			return nil, err
		}
		for _, n := range p.Notifications {
			out = append(out, fromRecord(n))
		}
		if len(p.Notifications) < notifications.MaxLimit || int64(len(out)) >= p.Total {
			break
		}
	}
	return out, nil
}

func (s *HTTPSource) MarkRead(ctx context.Context, id uint) (Notification, error) {
	var n models.Notification
	if err := s.do(ctx, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), &n); err != nil {
		return Notification{}, err
	}
	return fromRecord(n), nil
}

func (s *HTTPSource) Delete(ctx context.Context, id uint) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("/notifications/%d", id), nil)
}

func (s *HTTPSource) ClearAll(ctx context.Context) error {
	return s.do(ctx, http.MethodDelete, "/notifications", nil)
}

func fromRecord(n models.Notification) Notification {
	out := Notification{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Priority:  n.Priority,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		out.Data = json.RawMessage(n.Data)
	}
	return out
}
