package mcp

import (
	"context"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spigell/ats-screener/internal/screening"
	"go.uber.org/zap"
)

const (
	serverName       = "ats-screener"
	evaluateToolName = "evaluate_resumes"
)

// Evaluator screens a batch of resume URLs.
type Evaluator interface {
	Evaluate(ctx context.Context, urls []string) ([]screening.Result, error)
}

// Server exposes the screening pipeline as MCP tools.
type Server struct {
	MCPServer *sdkmcp.Server

	evaluator Evaluator
	logger    *zap.Logger
}

func NewServer(evaluator Evaluator, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: serverName, Version: version}, nil),
		evaluator: evaluator,
		logger:    logger.Named("mcp"),
	}

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        evaluateToolName,
		Description: "Download PDF resumes by URL, score them against the configured job description and notify candidates that pass the threshold.",
	}, s.handleEvaluate)

	return s
}

// Run serves the tools over stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting mcp server over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

type evaluateInput struct {
	ResumeURLs []string `json:"resume_urls" jsonschema:"URLs of PDF resumes, Google Drive share links are accepted"`
}

type resultItem struct {
	URL    string  `json:"url"`
	Status string  `json:"status"`
	Score  *int    `json:"score"`
	Email  *string `json:"email"`
}

type evaluateOutput struct {
	Results []resultItem `json:"results"`
}

func (s *Server) handleEvaluate(ctx context.Context, _ *sdkmcp.CallToolRequest, input evaluateInput) (*sdkmcp.CallToolResult, evaluateOutput, error) {
	if len(input.ResumeURLs) == 0 {
		return nil, evaluateOutput{}, errors.New("resume_urls must contain at least one url")
	}

	results, err := s.evaluator.Evaluate(ctx, input.ResumeURLs)
	if err != nil {
		s.logger.Error("evaluation failed", zap.Error(err))
		return nil, evaluateOutput{}, err
	}

	out := evaluateOutput{Results: make([]resultItem, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, resultItem{
			URL:    r.URL,
			Status: r.Status(),
			Score:  r.Score,
			Email:  r.Email,
		})
	}

	return nil, out, nil
}
