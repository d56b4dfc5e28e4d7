package googledocs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

const (
	defaultBaseURL = "https://docs.googleapis.com/v1"
	readOnlyScope  = "https://www.googleapis.com/auth/documents.readonly"
)

// Client reads the plain text of a Google Doc.
type Client struct {
	documentID string
	baseURL    string
	httpClient *http.Client
}

// NewClient authenticates with a service account key and builds the client.
func NewClient(ctx context.Context, documentID string, credentialsJSON []byte, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, errors.New("google docs document id cannot be empty")
	}
	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, readOnlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	// token requests share the bounded client
	base := &http.Client{Timeout: timeout}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(tokenCtx, jwtConfig.TokenSource(tokenCtx))
	httpClient.Timeout = timeout
	return NewClientWithHTTP(documentID, baseURL, httpClient), nil
}

// NewClientWithHTTP uses an already authorized HTTP client.
func NewClientWithHTTP(documentID, baseURL string, httpClient *http.Client) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		documentID: documentID,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: httpClient,
	}
}

// FetchText implements qa.DocumentSource.
func (c *Client) FetchText(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/documents/%s", c.baseURL, url.PathEscape(c.documentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build docs request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("docs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("docs request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode docs response: %w", err)
	}

	var b strings.Builder
	writeContent(&b, doc.Body.Content)
	return b.String(), nil
}

type document struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Body       struct {
		Content []structuralElement `json:"content"`
	} `json:"body"`
}

type structuralElement struct {
	Paragraph *paragraph `json:"paragraph,omitempty"`
	Table     *table     `json:"table,omitempty"`
}

type paragraph struct {
	Elements []struct {
		TextRun *struct {
			Content string `json:"content"`
		} `json:"textRun,omitempty"`
	} `json:"elements"`
}

type table struct {
	TableRows []struct {
		TableCells []struct {
			Content []structuralElement `json:"content"`
		} `json:"tableCells"`
	} `json:"tableRows"`
}

// writeContent flattens paragraphs, descending into table cells in reading order.
func writeContent(b *strings.Builder, elements []structuralElement) {
	for _, el := range elements {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun != nil {
					b.WriteString(pe.TextRun.Content)
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					writeContent(b, cell.Content)
				}
			}
		}
	}
}

var _ qa.DocumentSource = (*Client)(nil)
