package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"artlens-core/internal/domain/entity"
	"artlens-core/internal/domain/repository"
)

// retryPolicy bounds and paces retries against the external collaborators.
type retryPolicy struct {
	maxRetries uint64
	baseDelay  time.Duration
	timeout    time.Duration // cap per external operation
}

func defaultRetryPolicy(timeout time.Duration, maxRetries int) retryPolicy {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retryPolicy{
		maxRetries: uint64(maxRetries),
		baseDelay:  500 * time.Millisecond,
		timeout:    timeout,
	}
}

func (p retryPolicy) run(ctx context.Context, op func(ctx context.Context) error) error {
	// Scoped context so one slow model call cannot hang the request forever.
	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.baseDelay
	return backoff.Retry(func() error {
		err := op(opCtx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, p.maxRetries), opCtx))
}

func isRetryable(err error) bool {
	var notRecognized *entity.NotRecognizedError
	if errors.As(err, &notRecognized) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	// Retry on rate limits (429) and server errors (5xx)
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "unavailable")
}

// ResilientVision wraps the vision collaborator with a per-call timeout and
// retry on transient failures. A timeout is reported like any other failure;
// nothing is written anywhere on the error path.
type ResilientVision struct {
	inner  repository.VisionProvider
	policy retryPolicy
}

func NewResilientVision(inner repository.VisionProvider, timeout time.Duration, maxRetries int) *ResilientVision {
	return &ResilientVision{inner: inner, policy: defaultRetryPolicy(timeout, maxRetries)}
}

func (r *ResilientVision) Recognize(ctx context.Context, imageBytes []byte) (*entity.RecognitionResult, error) {
	var res *entity.RecognitionResult
	err := r.policy.run(ctx, func(ctx context.Context) error {
		var err error
		res, err = r.inner.Recognize(ctx, imageBytes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ResilientContent retries the primary text collaborator and then tries the
// fallback model once, the tiered flow the gateway uses for every generation.
type ResilientContent struct {
	primary  repository.ContentProvider
	fallback repository.ContentProvider // may be nil
	policy   retryPolicy
}

func NewResilientContent(primary, fallback repository.ContentProvider, timeout time.Duration, maxRetries int) *ResilientContent {
	return &ResilientContent{primary: primary, fallback: fallback, policy: defaultRetryPolicy(timeout, maxRetries)}
}

func (r *ResilientContent) Generate(ctx context.Context, kind entity.ContentKind, artwork entity.Artwork) (string, error) {
	var text string
	err := r.policy.run(ctx, func(ctx context.Context) error {
		var err error
		text, err = r.primary.Generate(ctx, kind, artwork)
		return err
	})
	if err == nil {
		return text, nil
	}
	if r.fallback == nil {
		return "", err
	}
	fbCtx, cancel := context.WithTimeout(ctx, r.policy.timeout)
	defer cancel()
	return r.fallback.Generate(fbCtx, kind, artwork)
}

func (r *ResilientContent) GenerateQuiz(ctx context.Context, artwork entity.Artwork) ([]entity.Question, error) {
	var qs []entity.Question
	err := r.policy.run(ctx, func(ctx context.Context) error {
		var err error
		qs, err = r.primary.GenerateQuiz(ctx, artwork)
		return err
	})
	if err == nil {
		return qs, nil
	}
	if r.fallback == nil {
		return nil, err
	}
	fbCtx, cancel := context.WithTimeout(ctx, r.policy.timeout)
	defer cancel()
	return r.fallback.GenerateQuiz(fbCtx, artwork)
}
