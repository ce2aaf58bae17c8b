package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"overmind/internal/common"
	"overmind/internal/domain/model"
	"overmind/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const blueprintCacheKey = "blueprints:all"

type BlueprintService struct {
	blueprintRepo repository.BlueprintRepository
	rdb           *redis.Client
	cacheTTL      time.Duration
}

func NewBlueprintService(blueprintRepo repository.BlueprintRepository, rdb *redis.Client, cacheTTL time.Duration) *BlueprintService {
	return &BlueprintService{
		blueprintRepo: blueprintRepo,
		rdb:           rdb,
		cacheTTL:      cacheTTL,
	}
}

// List returns all blueprints. When userID is non-empty each blueprint is
// annotated with that user's latest challenge (and its latest log). The base
// rows are cache-friendly since blueprints are immutable after seeding; the
// per-user annotation never touches the cache.
func (s *BlueprintService) List(ctx context.Context, userID string) ([]model.Blueprint, error) {
	blueprints, err := s.listBase(ctx)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return blueprints, nil
	}

	latest, err := s.blueprintRepo.LatestChallengesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user challenges: %w", err)
	}
	for i := range blueprints {
		if c, ok := latest[blueprints[i].ID]; ok {
			blueprints[i].Challenges = []model.Challenge{*c}
		}
	}
	return blueprints, nil
}

// Get returns one blueprint, annotated like List when userID is non-empty.
// Generator sources stay internal to the service layer.
func (s *BlueprintService) Get(ctx context.Context, blueprintID, userID string) (*model.Blueprint, error) {
	blueprint, err := s.blueprintRepo.FindByID(ctx, blueprintID)
	if err != nil {
		return nil, err
	}

	if userID != "" {
		challenge, err := s.blueprintRepo.LatestChallengeForUser(ctx, blueprintID, userID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user challenge: %w", err)
		}
		if challenge != nil {
			blueprint.Challenges = []model.Challenge{*challenge}
		}
	}
	return blueprint, nil
}

func (s *BlueprintService) listBase(ctx context.Context) ([]model.Blueprint, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, blueprintCacheKey).Bytes()
		if err == nil {
			var blueprints []model.Blueprint
			if err := json.Unmarshal(cached, &blueprints); err == nil {
				return blueprints, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("blueprint cache read failed, falling back to database: %v", err)
		}
	}

	blueprints, err := s.blueprintRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blueprints: %w", err)
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(blueprints); err == nil {
			if err := s.rdb.Set(ctx, blueprintCacheKey, payload, s.cacheTTL).Err(); err != nil {
				log.Printf("blueprint cache write failed: %v", err)
			}
		}
	}
	return blueprints, nil
}
