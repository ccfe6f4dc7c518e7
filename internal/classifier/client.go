// Package classifier talks to the external query classification service over
// gRPC. The service labels a prompt with a domain category and a confidence;
// the router degrades to heuristic-only routing when it is unreachable.
package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/types"
)

const classifyMethod = "/classifier.v1.QueryClassifier/Classify"

// Classification is the service's verdict for a prompt.
type Classification struct {
	Category   types.QueryCategory
	Confidence float64
}

// Client wraps the gRPC connection to the classifier service.
type Client struct {
	conn *grpc.ClientConn
	cfg  func() config.ClassifierConfig
}

// NewClient creates a classifier client. Call Connect() to establish the
// gRPC connection.
func NewClient(cfg func() config.ClassifierConfig) *Client {
	return &Client{cfg: cfg}
}

// Connect establishes the gRPC connection to the classifier service.
func (c *Client) Connect() error {
	cfg := c.cfg()
	conn, err := grpc.NewClient(cfg.Address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("classifier dial: %w", err)
	}
	c.conn = conn
	slog.Info("classifier service connected", "address", cfg.Address)
	return nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) Enabled() bool { return c.cfg().Enabled }

// Classify labels the prompt. On any failure it returns the unknown category
// with zero confidence when fail-open is configured, and the error otherwise.
func (c *Client) Classify(ctx context.Context, prompt string) (Classification, error) {
	fallback := Classification{Category: types.CategoryUnknown, Confidence: 0}

	cfg := c.cfg()
	if c.conn == nil {
		if cfg.FailOpen {
			return fallback, nil
		}
		return fallback, fmt.Errorf("classifier not connected")
	}

	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	in, err := structpb.NewStruct(map[string]any{"text": prompt})
	if err != nil {
		return fallback, fmt.Errorf("build classify request: %w", err)
	}
	out := &structpb.Struct{}

	if err := c.conn.Invoke(callCtx, classifyMethod, in, out); err != nil {
		slog.Warn("classifier call failed", "error", err)
		if cfg.FailOpen {
			return fallback, nil
		}
		return fallback, fmt.Errorf("classify: %w", err)
	}

	fields := out.AsMap()
	category, _ := fields["category"].(string)
	confidence, _ := fields["confidence"].(float64)

	return Classification{
		Category:   types.ParseCategory(category),
		Confidence: confidence,
	}, nil
}
