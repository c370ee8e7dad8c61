package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CRNGenerator produces complaint reference numbers.
type CRNGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// RedisCRNGenerator issues CRN-<year>-<sequence> numbers from a per-year
// Redis counter.
type RedisCRNGenerator struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisCRNGenerator(client redis.Cmdable) *RedisCRNGenerator {
	return &RedisCRNGenerator{client: client, now: time.Now}
}

func (g *RedisCRNGenerator) Generate(ctx context.Context) (string, error) {
	year := g.now().Year()
	seq, err := g.client.Incr(ctx, fmt.Sprintf("crn:seq:%d", year)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate reference number: %w", err)
	}
	return fmt.Sprintf("CRN-%d-%06d", year, seq), nil
}

// UUIDCRNGenerator derives the reference number from a random UUID.
type UUIDCRNGenerator struct{}

func (UUIDCRNGenerator) Generate(context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return "CRN-" + strings.ToUpper(hex[:12]), nil
}
