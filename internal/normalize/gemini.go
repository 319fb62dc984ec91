package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/mmynk/expensecmd/internal/command"
)

// DefaultGeminiEndpoint is the Generative Language API base URL.
const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures the Gemini function-calling strategy.
type GeminiConfig struct {
	APIKey string
	Model  string
	// Endpoint overrides the API base URL. Empty uses DefaultGeminiEndpoint.
	Endpoint string
	Timeout  time.Duration
	// HTTPClient defaults to a client without its own timeout; Timeout bounds each call.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Gemini declares one function per intent and reads the function call the
// model chooses.
type Gemini struct {
	url     string
	apiKey  string
	timeout time.Duration
	tools   []geminiTool
	http    *http.Client
	logger  *slog.Logger
}

var _ command.Normalizer = (*Gemini)(nil)

// FunctionSchema is the OpenAPI subset Gemini accepts for function parameters.
type FunctionSchema struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description,omitempty"`
	Properties  map[string]*FunctionSchema `json:"properties,omitempty"`
	Required    []string                   `json:"required,omitempty"`
}

// FunctionDeclaration describes one callable function to the model.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  *FunctionSchema `json:"parameters"`
}

type geminiTool struct {
	FunctionDeclarations []*FunctionDeclaration `json:"functionDeclarations"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents   []geminiContent `json:"contents"`
	Tools      []geminiTool    `json:"tools"`
	ToolConfig struct {
		FunctionCallingConfig struct {
			Mode string `json:"mode"`
		} `json:"functionCallingConfig"`
	} `json:"toolConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGemini builds the generateContent endpoint and the tool declarations
// for schema.
func NewGemini(_ context.Context, cfg GeminiConfig, schema command.Schema) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini model is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{
		url:     endpoint + "/" + model + ":generateContent",
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		tools:   []geminiTool{{FunctionDeclarations: FunctionDeclarations(schema)}},
		http:    client,
		logger:  logger,
	}, nil
}

func (g *Gemini) Name() string { return StrategyGemini }

// FunctionDeclarations builds one declaration per intent in schema.
func FunctionDeclarations(schema command.Schema) []*FunctionDeclaration {
	decls := make([]*FunctionDeclaration, 0, len(schema.Intents))
	for _, intent := range schema.Intents {
		props := make(map[string]*FunctionSchema, len(intent.Fields))
		for _, f := range intent.Fields {
			props[f.Name] = &FunctionSchema{
				Type:        geminiType(f.Type),
				Description: f.Description,
			}
		}
		decls = append(decls, &FunctionDeclaration{
			Name:        intent.Tag,
			Description: intent.Description,
			Parameters: &FunctionSchema{
				Type:       "OBJECT",
				Properties: props,
				Required:   intent.RequiredFields(),
			},
		})
	}
	return decls
}

func geminiType(t command.FieldType) string {
	if t == command.TypeNumber {
		return "NUMBER"
	}
	return "STRING"
}

// Normalize makes one generateContent call. A reply without a function call
// is searched for an {"action", "data"} object instead.
func (g *Gemini) Normalize(ctx context.Context, text string) (command.Candidate, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.generate(ctx, text)
	if err != nil {
		return command.Candidate{}, classify(ctx, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return command.Candidate{}, command.Unparseable(errors.New("gemini returned no candidates"))
	}

	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			g.logger.DebugContext(ctx, "Model reply",
				"strategy", StrategyGemini,
				"function", part.FunctionCall.Name,
				"args", string(part.FunctionCall.Args))
			return functionCallCandidate(part.FunctionCall)
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	reply := strings.Join(texts, "\n")
	g.logger.DebugContext(ctx, "Model reply", "strategy", StrategyGemini, "reply", reply)
	return parseActionReply(reply)
}

func (g *Gemini) generate(ctx context.Context, text string) (*geminiResponse, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
		Tools:    g.tools,
	}
	payload.ToolConfig.FunctionCallingConfig.Mode = "AUTO"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generateContent: %w", err)
	}
	defer resp.Body.Close()

	// Decodes Google's {"error": {...}} body into a *googleapi.Error.
	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("generateContent: %w", err)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode generateContent response: %w", err)
	}
	return &out, nil
}

func functionCallCandidate(call *geminiFunctionCall) (command.Candidate, error) {
	if strings.TrimSpace(call.Name) == "" {
		return command.Candidate{}, command.Unparseable(errNoAction)
	}
	data := map[string]any{}
	if len(call.Args) > 0 && string(call.Args) != "null" {
		dec := json.NewDecoder(bytes.NewReader(call.Args))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return command.Candidate{}, command.Unparseable(fmt.Errorf("failed to decode function args: %w", err))
		}
	}
	return command.CandidateFromMap(call.Name, data), nil
}
