// Package interpreter turns one chat turn into either a reply or a fully
// resolved action awaiting human approval. It never mutates records.
package interpreter

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	catalogx "github.com/tanpawarit/hitl-purchase-agent/agent/catalog"
	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	nodex "github.com/tanpawarit/hitl-purchase-agent/agent/nodes"
)

var _ contractx.Interpreter = (*Service)(nil)

type Option func(*Service)

// WithLogger sets the logger used when the request context carries none.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

type Service struct {
	proposer contractx.Proposer
	store    contractx.Gateway
	resolver *catalogx.Resolver
	logger   zerolog.Logger

	graphRunner compose.Runnable[nodex.GraphInput, contractx.Interpretation]
}

func New(proposer contractx.Proposer, store contractx.Gateway, opts ...Option) (*Service, error) {
	if proposer == nil {
		return nil, errors.New("proposer is required")
	}
	if store == nil {
		return nil, errors.New("record store is required")
	}

	s := &Service{
		proposer: proposer,
		store:    store,
		resolver: catalogx.NewResolver(store),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	runner, err := s.compileInterpretGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = runner
	return s, nil
}

func (s *Service) Interpret(ctx context.Context, callerID string, conversation []contractx.ChatMessage) (contractx.Interpretation, error) {
	if zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
		ctx = s.logger.WithContext(ctx)
	}

	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		CallerID:     callerID,
		Conversation: conversation,
	})
	if err != nil {
		return contractx.Interpretation{}, err
	}
	return out, nil
}
