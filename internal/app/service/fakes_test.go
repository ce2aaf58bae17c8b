package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"overmind/internal/common"
	"overmind/internal/domain/model"

	"github.com/google/uuid"
)

// In-memory repository fakes. The challenge fake mirrors the transactional
// semantics of the Postgres implementation: classification, status update
// and log append happen under one lock.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.User // keyed by email
	hashes map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  map[string]*model.User{},
		hashes: map[string]string{},
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return common.ErrConflict
	}
	u := *user
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[user.Email] = &u
	r.hashes[user.Email] = passwordHash
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmailWithPassword(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	hash, ok := r.hashes[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	copied.HashedPassword = hash
	return &copied, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summaries := []model.UserSummary{}
	for _, u := range r.users {
		summaries = append(summaries, model.UserSummary{ID: u.ID, Email: u.Email, Profile: u.Profile})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Email < summaries[j].Email })
	return summaries, nil
}

func (r *fakeUserRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, email)
	delete(r.hashes, email)
	return nil
}

type fakeBlueprintRepo struct {
	mu         sync.Mutex
	blueprints map[string]*model.Blueprint
}

func newFakeBlueprintRepo(blueprints ...*model.Blueprint) *fakeBlueprintRepo {
	r := &fakeBlueprintRepo{blueprints: map[string]*model.Blueprint{}}
	for _, b := range blueprints {
		r.blueprints[b.ID] = b
	}
	return r
}

func (r *fakeBlueprintRepo) Create(_ context.Context, b *model.Blueprint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blueprints[b.ID] = b
	return nil
}

func (r *fakeBlueprintRepo) FindByID(_ context.Context, id string) (*model.Blueprint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blueprints[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBlueprintRepo) List(_ context.Context) ([]model.Blueprint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := []model.Blueprint{}
	for _, b := range r.blueprints {
		copied := *b
		copied.InputGenerator = ""
		copied.SolutionGenerator = ""
		list = append(list, copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	return list, nil
}

func (r *fakeBlueprintRepo) LatestChallengeForUser(_ context.Context, _, _ string) (*model.Challenge, error) {
	return nil, common.ErrNotFound
}

func (r *fakeBlueprintRepo) LatestChallengesForUser(_ context.Context, _ string) (map[string]*model.Challenge, error) {
	return map[string]*model.Challenge{}, nil
}

type fakeChallengeRepo struct {
	mu         sync.Mutex
	challenges map[string]*model.Challenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: map[string]*model.Challenge{}}
}

func (r *fakeChallengeRepo) Create(_ context.Context, c *model.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *c
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	r.challenges[c.ID] = &copied
	return nil
}

func (r *fakeChallengeRepo) SubmitAnswer(_ context.Context, id, rawInput string) (*model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.challenges[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	status, verdict, err := model.ClassifyAnswer(c.Solution, rawInput)
	if err != nil {
		return nil, err
	}

	c.Status = status
	c.UpdatedAt = time.Now()
	c.Logs = append([]model.SubmissionLog{{
		ID:          uuid.NewString(),
		ChallengeID: id,
		Input:       rawInput,
		Output:      verdict,
		CreatedAt:   time.Now(),
	}}, c.Logs...)

	copied := *c
	copied.Logs = append([]model.SubmissionLog{}, c.Logs...)
	return &copied, nil
}

func (r *fakeChallengeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.challenges)
}
