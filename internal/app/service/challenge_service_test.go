package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"overmind/internal/app/generator"
	"overmind/internal/common"
	"overmind/internal/domain/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumBlueprint() *model.Blueprint {
	return &model.Blueprint{
		ID:          uuid.NewString(),
		Title:       "The Sum Challenge",
		Slug:        "the-sum-challenge",
		Description: "Add the two numbers.",
		Difficulty:  model.DifficultyEasy,
		InputGenerator: `() => {
  const min = 1;
  const max = 1000;
  const num1 = Math.floor(Math.random() * (max - min + 1) + min);
  const num2 = Math.floor(Math.random() * (max - min + 1) + min);

  return [num1, num2];
}`,
		SolutionGenerator: `(input) => input.reduce((acc, num) => acc + num, 0)`,
	}
}

func newChallengeService(blueprints ...*model.Blueprint) (*ChallengeService, *fakeChallengeRepo) {
	challengeRepo := newFakeChallengeRepo()
	blueprintRepo := newFakeBlueprintRepo(blueprints...)
	svc := NewChallengeService(challengeRepo, blueprintRepo, generator.New(2*time.Second))
	return svc, challengeRepo
}

func TestStartChallengeSum(t *testing.T) {
	bp := sumBlueprint()
	svc, repo := newChallengeService(bp)

	challenge, err := svc.Start(context.Background(), bp.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, challenge.Status)
	assert.Equal(t, "user-1", challenge.UserID)
	assert.Equal(t, bp.ID, challenge.BlueprintID)
	assert.Equal(t, 1, repo.count())

	var input model.Envelope
	require.NoError(t, json.Unmarshal(challenge.Input, &input))
	pair, ok := input.Value.([]interface{})
	require.True(t, ok, "input envelope should hold the generated pair")
	require.Len(t, pair, 2)

	// The stored solution is the sum of the generated pair.
	sum := pair[0].(float64) + pair[1].(float64)
	want, err := model.CanonicalSolutionString(challenge.Solution)
	require.NoError(t, err)
	got, err := json.Marshal(sum)
	require.NoError(t, err)
	assert.Equal(t, string(got), want)
}

func TestStartChallengeMissingBlueprint(t *testing.T) {
	svc, repo := newChallengeService()

	_, err := svc.Start(context.Background(), "no-such-blueprint", "user-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 0, repo.count())
}

func TestStartChallengeGeneratorFailureLeavesNoRecord(t *testing.T) {
	broken := sumBlueprint()
	broken.InputGenerator = `() => {` // unparseable
	svc, repo := newChallengeService(broken)

	_, err := svc.Start(context.Background(), broken.ID, "user-1")
	assert.ErrorIs(t, err, common.ErrGeneratorSyntax)
	assert.Equal(t, 0, repo.count(), "failed generation must not create a partial challenge")

	throwing := sumBlueprint()
	throwing.ID = uuid.NewString()
	throwing.SolutionGenerator = `(input) => { throw new Error("boom"); }`
	svc, repo = newChallengeService(throwing)

	_, err = svc.Start(context.Background(), throwing.ID, "user-1")
	assert.ErrorIs(t, err, common.ErrGeneratorExecution)
	assert.Equal(t, 0, repo.count())
}

// Starting the same blueprint twice creates two independent challenges.
// There is intentionally no duplicate guard; this test documents it.
func TestStartChallengeAllowsRepeatedStarts(t *testing.T) {
	bp := sumBlueprint()
	svc, repo := newChallengeService(bp)

	first, err := svc.Start(context.Background(), bp.ID, "user-1")
	require.NoError(t, err)
	second, err := svc.Start(context.Background(), bp.ID, "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, repo.count())
}

func TestSubmitAnswerLifecycle(t *testing.T) {
	bp := sumBlueprint()
	svc, _ := newChallengeService(bp)

	challenge, err := svc.Start(context.Background(), bp.ID, "user-1")
	require.NoError(t, err)
	solutionBefore := string(challenge.Solution)

	correct, err := model.CanonicalSolutionString(challenge.Solution)
	require.NoError(t, err)

	// Wrong answer: status submitted, verdict error, and another try allowed.
	updated, err := svc.Submit(context.Background(), challenge.ID, "definitely wrong")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, updated.Status)
	require.NotEmpty(t, updated.Logs)
	assert.Equal(t, model.VerdictError, updated.Logs[0].Output)
	assert.Equal(t, "definitely wrong", updated.Logs[0].Input)

	// Resubmission with the canonical solution string completes it.
	updated, err = svc.Submit(context.Background(), challenge.ID, correct)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, model.VerdictCorrect, updated.Logs[0].Output)
	assert.Len(t, updated.Logs, 2)

	// The solution never changes after creation.
	assert.Equal(t, solutionBefore, string(updated.Solution))
}

// Concurrent submissions serialize on the repository's lock, so every
// returned snapshot's newest log must agree with the status it was returned
// with, and no attempt may be lost.
func TestSubmitAnswerConcurrentLogsAgreeWithStatus(t *testing.T) {
	bp := sumBlueprint()
	svc, _ := newChallengeService(bp)

	challenge, err := svc.Start(context.Background(), bp.ID, "user-1")
	require.NoError(t, err)
	correct, err := model.CanonicalSolutionString(challenge.Solution)
	require.NoError(t, err)

	const submitters = 20
	snapshots := make([]*model.Challenge, submitters)
	errs := make([]error, submitters)
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answer := correct
			if i%2 == 0 {
				answer = "not the answer"
			}
			snapshots[i], errs[i] = svc.Submit(context.Background(), challenge.ID, answer)
		}(i)
	}
	wg.Wait()

	for i, snap := range snapshots {
		require.NoError(t, errs[i])
		require.NotEmpty(t, snap.Logs)
		if snap.Logs[0].Output == model.VerdictCorrect {
			assert.Equal(t, model.StatusCompleted, snap.Status)
		} else {
			assert.Equal(t, model.StatusSubmitted, snap.Status)
		}
	}

	// A final deterministic submission observes every prior attempt.
	final, err := svc.Submit(context.Background(), challenge.ID, correct)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, final.Status)
	assert.Len(t, final.Logs, submitters+1)
	assert.Equal(t, model.VerdictCorrect, final.Logs[0].Output)
}

func TestSubmitAnswerMissingChallenge(t *testing.T) {
	svc, _ := newChallengeService()

	_, err := svc.Submit(context.Background(), "no-such-challenge", "42")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
