package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"philomind/internal/logging"
	"philomind/internal/questions"
)

// Client produces an analysis from a completed answer set.
type Client interface {
	Analyze(ctx context.Context, bank questions.Bank, answers map[int]string) (*Result, error)
}

// resultSchema constrains the model to the Result JSON shape.
func resultSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"maturityScore": {
				Type:        genai.TypeInteger,
				Description: "Score from 0 to 100 representing philosophical maturity",
			},
			"philosophicalPersona": {
				Type:        genai.TypeString,
				Description: "A catchy title for the user's philosophical archetype",
			},
			"generalAnalysis": {
				Type:        genai.TypeString,
				Description: "A concise overall analysis (max 2 sentences)",
			},
			"insights": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"questionId":               {Type: genai.TypeInteger},
						"userAnswerSummary":        {Type: genai.TypeString},
						"philosophicalPerspective": {Type: genai.TypeString},
						"relevantQuote":            {Type: genai.TypeString},
						"philosopher":              {Type: genai.TypeString},
					},
					Required: []string{"questionId", "userAnswerSummary", "philosophicalPerspective", "relevantQuote", "philosopher"},
				},
			},
			"hasAward":   {Type: genai.TypeBoolean},
			"awardTitle": {Type: genai.TypeString},
		},
		Required: []string{"maturityScore", "philosophicalPersona", "generalAnalysis", "insights", "hasAward"},
	}
}

// GeminiClient implements Client on the Gemini structured-output API.
type GeminiClient struct {
	apiKey  string
	model   string
	timeout time.Duration

	mu     sync.Mutex
	client *genai.Client

	// generate is swapped out in tests to exercise decode and
	// classification without the network.
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewGeminiClient creates a Gemini analysis client. A missing key is not an
// error here; Analyze reports ErrMissingCredentials before touching the
// network so the UI can surface it at submission time.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}
	c.generate = c.generateContent
	return c
}

// Analyze sends the prompt and decodes the structured response. Failures
// classify into ErrMissingCredentials, ErrTransport or ErrMalformedResponse;
// a result is returned only when the whole payload validates.
func (c *GeminiClient) Analyze(ctx context.Context, bank questions.Bank, answers map[int]string) (*Result, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, ErrMissingCredentials
	}

	timer := logging.StartTimer(logging.CategoryAnalysis, "Analyze")
	defer timer.StopWithThreshold(10 * time.Second)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.generate(ctx, BuildPrompt(bank, answers))
	if err != nil {
		logging.AnalysisError("generate failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response text", ErrMalformedResponse)
	}

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		logging.AnalysisError("decode failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := result.Validate(bank); err != nil {
		logging.AnalysisError("validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	logging.Analysis("analysis complete: score=%d persona=%q insights=%d",
		result.MaturityScore, result.PhilosophicalPersona, len(result.Insights))
	return &result, nil
}

// generateContent performs the real Gemini call.
func (c *GeminiClient) generateContent(ctx context.Context, prompt string) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    resultSchema(),
		},
	)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *GeminiClient) ensureClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: c.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.client = client
	return client, nil
}
