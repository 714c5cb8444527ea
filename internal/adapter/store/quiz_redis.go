package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"artlens-core/internal/domain/entity"
)

// attemptScript appends an attempt and folds the score into the best with a
// single server-side step, so two simultaneous submits for the same pair can
// never interleave partial writes.
//
// KEYS[1] = best-score key, KEYS[2] = attempts list key
// ARGV[1] = score, ARGV[2] = attempt JSON
// Returns {previous_best, new_best, improved} with previous_best = -1 when
// this was the first attempt.
var attemptScript = redis.NewScript(`
local best = redis.call('GET', KEYS[1])
local score = tonumber(ARGV[1])
redis.call('RPUSH', KEYS[2], ARGV[2])
if best == false then
  redis.call('SET', KEYS[1], score)
  return {-1, score, 0}
end
best = tonumber(best)
local newbest = best
local improved = 0
if score > best then
  newbest = score
  improved = 1
end
redis.call('SET', KEYS[1], newbest)
return {best, newbest, improved}
`)

// RedisQuizStore is the durable quiz cache. Questions are written with SetNX
// so the first generation wins; attempts go through attemptScript.
type RedisQuizStore struct {
	client *redis.Client
}

func NewRedisQuizStore(client *redis.Client) *RedisQuizStore {
	return &RedisQuizStore{client: client}
}

// Key parts are joined with NUL so a user id containing ":" cannot collide
// with another pair's keys.
func quizQuestionsKey(userID, artworkID string) string {
	return "quiz:q:" + userID + "\x00" + artworkID
}

func quizBestKey(userID, artworkID string) string {
	return "quiz:best:" + userID + "\x00" + artworkID
}

func quizAttemptsKey(userID, artworkID string) string {
	return "quiz:attempts:" + userID + "\x00" + artworkID
}

func (s *RedisQuizStore) GetQuestions(ctx context.Context, userID, artworkID string) ([]entity.Question, error) {
	raw, err := s.client.Get(ctx, quizQuestionsKey(userID, artworkID)).Result()
	if err == redis.Nil {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	var qs []entity.Question
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil, fmt.Errorf("%w: corrupt question set: %v", entity.ErrStoreUnavailable, err)
	}
	return qs, nil
}

func (s *RedisQuizStore) PutQuestions(ctx context.Context, userID, artworkID string, qs []entity.Question) (bool, error) {
	raw, err := json.Marshal(qs)
	if err != nil {
		return false, fmt.Errorf("marshal questions: %w", err)
	}
	written, err := s.client.SetNX(ctx, quizQuestionsKey(userID, artworkID), raw, 0).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	return written, nil
}

func (s *RedisQuizStore) ReplaceQuestions(ctx context.Context, userID, artworkID string, qs []entity.Question) error {
	raw, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	if err := s.client.Set(ctx, quizQuestionsKey(userID, artworkID), raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisQuizStore) RecordAttempt(ctx context.Context, userID, artworkID string, score int) (*entity.AttemptResult, error) {
	exists, err := s.client.Exists(ctx, quizQuestionsKey(userID, artworkID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return nil, entity.ErrNotFound
	}

	attempt, err := json.Marshal(entity.QuizAttempt{Score: score, SubmittedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal attempt: %w", err)
	}
	res, err := attemptScript.Run(ctx, s.client,
		[]string{quizBestKey(userID, artworkID), quizAttemptsKey(userID, artworkID)},
		score, attempt,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	return parseAttemptReply(res, score)
}

// parseAttemptReply converts the attemptScript reply into an AttemptResult.
// A previous best of -1 marks the first attempt for the pair.
func parseAttemptReply(reply []int64, score int) (*entity.AttemptResult, error) {
	if len(reply) != 3 {
		return nil, fmt.Errorf("%w: unexpected script reply", entity.ErrStoreUnavailable)
	}
	prev := int(reply[0])
	first := prev < 0
	if first {
		prev = 0
	}
	return &entity.AttemptResult{
		Score:        score,
		BestScore:    int(reply[1]),
		PreviousBest: prev,
		IsNewBest:    !first && reply[2] == 1,
	}, nil
}
