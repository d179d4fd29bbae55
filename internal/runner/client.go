package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultLanguageID is JavaScript (Node.js) on the execution service.
const defaultLanguageID = 63

// ExecClient submits code to the external execution API and waits for the
// result inline. The service's isolation is its own concern; this client
// treats it as opaque.
type ExecClient struct {
	baseURL string
	http    *http.Client
}

func NewExecClient(baseURL string, timeout time.Duration) *ExecClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExecClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type submission struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type submissionResult struct {
	Stdout string  `json:"stdout"`
	Stderr string  `json:"stderr"`
	Time   string  `json:"time"`
	Memory float64 `json:"memory"`
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

func (c *ExecClient) Run(ctx context.Context, req Request) (Result, error) {
	languageID := req.LanguageID
	if languageID == 0 {
		languageID = defaultLanguageID
	}

	body, err := json.Marshal(submission{
		SourceCode: req.Code,
		LanguageID: languageID,
		Stdin:      req.Stdin,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal submission: %w", err)
	}

	url := c.baseURL + "/submissions?base64_encoded=false&wait=true"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build submission request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("execution service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read execution response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("execution service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var sub submissionResult
	if err := json.Unmarshal(raw, &sub); err != nil {
		return Result{}, fmt.Errorf("decode execution response: %w", err)
	}

	return Result{
		Stdout:      sub.Stdout,
		Stderr:      sub.Stderr,
		Status:      sub.Status.Description,
		Time:        sub.Time,
		Memory:      int(sub.Memory),
		CompletedAt: time.Now().UTC(),
	}, nil
}
