package service

import (
	"context"
	"fmt"
	"log"

	"overmind/internal/app/generator"
	"overmind/internal/domain/model"
	"overmind/internal/domain/repository"

	"github.com/google/uuid"
)

type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	blueprintRepo repository.BlueprintRepository
	evaluator     *generator.Evaluator
}

func NewChallengeService(
	challengeRepo repository.ChallengeRepository,
	blueprintRepo repository.BlueprintRepository,
	evaluator *generator.Evaluator,
) *ChallengeService {
	return &ChallengeService{
		challengeRepo: challengeRepo,
		blueprintRepo: blueprintRepo,
		evaluator:     evaluator,
	}
}

// Start generates a personalized input/solution pair from the blueprint's
// generators and creates a pending challenge for the user. Generator
// failures abort before any row is written. Starting the same blueprint
// again creates another challenge; there is deliberately no duplicate guard.
func (s *ChallengeService) Start(ctx context.Context, blueprintID, userID string) (*model.Challenge, error) {
	blueprint, err := s.blueprintRepo.FindByID(ctx, blueprintID)
	if err != nil {
		return nil, err
	}

	inputValue, solutionValue, err := s.evaluator.Evaluate(blueprint.InputGenerator, blueprint.SolutionGenerator)
	if err != nil {
		return nil, fmt.Errorf("blueprint %s: %w", blueprint.ID, err)
	}

	input, err := model.NewEnvelope(inputValue)
	if err != nil {
		return nil, err
	}
	solution, err := model.NewEnvelope(solutionValue)
	if err != nil {
		return nil, err
	}

	challenge := &model.Challenge{
		ID:          uuid.NewString(),
		UserID:      userID,
		BlueprintID: blueprint.ID,
		Input:       input,
		Solution:    solution,
		Status:      model.StatusPending,
	}

	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	log.Printf("Challenge %s started for user %s on blueprint %s", challenge.ID, userID, blueprint.ID)
	return challenge, nil
}

// Submit records one answer attempt. The comparison, status transition and
// log append happen atomically in the repository; a missing challenge is
// ErrNotFound before anything is compared.
func (s *ChallengeService) Submit(ctx context.Context, challengeID, rawInput string) (*model.Challenge, error) {
	challenge, err := s.challengeRepo.SubmitAnswer(ctx, challengeID, rawInput)
	if err != nil {
		return nil, err
	}
	return challenge, nil
}
