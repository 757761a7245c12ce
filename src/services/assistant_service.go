package services

import (
	"context"

	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/security/validation"
)

type assistantServiceImpl struct {
	api *apiclient.Client
}

func NewAssistantService(api *apiclient.Client) AssistantService {
	return &assistantServiceImpl{api: api}
}

func (s *assistantServiceImpl) Ask(ctx context.Context, p *Principal, question string) (string, error) {
	q, err := validation.ValidateQuestion(question)
	if err != nil {
		return "", err
	}
	answer, err := s.api.Ask(ctx, p.Token, q)
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Info("Assistant answered", "userID", p.UserID, "questionLength", len(q))
	return answer, nil
}
