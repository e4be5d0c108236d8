// Package apiclient is the web front end's client for the report API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"foodreport/internal/domain/report"
)

// APIError is a non-2xx answer carrying the API's {error:{message}} text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// ReportForm is the multipart payload of create and update. A nil Image on
// update keeps the stored photo.
type ReportForm struct {
	ID           string
	ShopName     string
	Name         string
	Place        string
	Rating       int
	Comment      string
	Link         string
	DateYYYYMMDD string
	Image        *report.Image
}

func (c *Client) Login(ctx context.Context, email string) (string, error) {
	var out struct {
		JWT string `json:"jwt"`
	}
	q := url.Values{"email": {email}}
	if err := c.do(ctx, http.MethodGet, "/api/login?"+q.Encode(), "", nil, "", &out); err != nil {
		return "", err
	}
	return out.JWT, nil
}

func (c *Client) GetReports(ctx context.Context) ([]report.Report, error) {
	var out struct {
		Reports []report.Report `json:"reports"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/getReports", "", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Reports, nil
}

func (c *Client) GetReportByID(ctx context.Context, id string) (report.Report, error) {
	var out struct {
		Report report.Report `json:"report"`
	}
	q := url.Values{"id": {id}}
	if err := c.do(ctx, http.MethodGet, "/api/getReportById?"+q.Encode(), "", nil, "", &out); err != nil {
		return report.Report{}, err
	}
	return out.Report, nil
}

func (c *Client) CreateReport(ctx context.Context, token string, f ReportForm) (report.Report, error) {
	return c.sendForm(ctx, http.MethodPost, "/api/auth/createReport", token, f)
}

func (c *Client) UpdateReport(ctx context.Context, token string, f ReportForm) (report.Report, error) {
	return c.sendForm(ctx, http.MethodPut, "/api/auth/updateReport", token, f)
}

func (c *Client) DeleteReport(ctx context.Context, token, id string) error {
	q := url.Values{"id": {id}}
	return c.do(ctx, http.MethodDelete, "/api/auth/deleteReport?"+q.Encode(), token, nil, "", nil)
}

func (c *Client) sendForm(ctx context.Context, method, path, token string, f ReportForm) (report.Report, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := [][2]string{
		{"shopName", f.ShopName},
		{"name", f.Name},
		{"place", f.Place},
		{"rating", strconv.Itoa(f.Rating)},
		{"comment", f.Comment},
		{"link", f.Link},
		{"dateYYYYMMDD", f.DateYYYYMMDD},
	}
	if f.ID != "" {
		fields = append(fields, [2]string{"id", f.ID})
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return report.Report{}, err
		}
	}

	if f.Image != nil {
		part, err := w.CreateFormFile("image", f.Image.Filename)
		if err != nil {
			return report.Report{}, err
		}
		if _, err := part.Write(f.Image.Data); err != nil {
			return report.Report{}, err
		}
	} else if err := w.WriteField("image", report.NoImageMarker); err != nil {
		return report.Report{}, err
	}
	if err := w.Close(); err != nil {
		return report.Report{}, err
	}

	var out struct {
		Report report.Report `json:"report"`
	}
	if err := c.do(ctx, method, path, token, body, w.FormDataContentType(), &out); err != nil {
		return report.Report{}, err
	}
	return out.Report, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
			msg = e.Error.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
