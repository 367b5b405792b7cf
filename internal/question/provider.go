package question

import (
	"context"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"sense-hacker-service/internal/domain"
)

// Generator is the external text-generation capability. Implementations must
// honor the context deadline; the provider makes exactly one attempt per fetch.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// fenceMarkers strips fenced-block delimiters that generators like to wrap
// JSON responses in, wherever they appear in the text.
var fenceMarkers = regexp.MustCompile("```[a-zA-Z]*\n?|```")

// Provider sources questions from the generator and falls back to the static
// bank on any failure. Fetch never fails the caller.
type Provider struct {
	gen  Generator
	bank *FallbackBank
	now  func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewProvider builds a provider. A nil generator means fallback-only mode,
// used when no API key is configured.
func NewProvider(gen Generator, bank *FallbackBank, rnd *rand.Rand) *Provider {
	return &Provider{gen: gen, bank: bank, now: time.Now, rnd: rnd}
}

// NewProviderWithClock is test-only for deterministic freshness tokens.
func NewProviderWithClock(gen Generator, bank *FallbackBank, rnd *rand.Rand, now func() time.Time) *Provider {
	return &Provider{gen: gen, bank: bank, now: now, rnd: rnd}
}

// PoolSize reports the distinct fallback pool size, which bounds the caller's
// duplicate-retry loop.
func (p *Provider) PoolSize() int {
	return p.bank.Size()
}

// Fetch obtains one question for the given difficulty, excluding the given
// question texts. Generation, parse, and validation failures are logged and
// absorbed by the fallback bank; the caller always gets a usable question.
func (p *Provider) Fetch(ctx context.Context, level domain.Difficulty, excluded []string) domain.Question {
	if p.gen == nil {
		return p.bank.Next(excluded)
	}

	prompt := buildPrompt(level, p.randomTopic(), p.now(), excluded)

	text, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("question generation failed, using fallback: %v", err)
		return p.bank.Next(excluded)
	}

	cleaned := strings.TrimSpace(fenceMarkers.ReplaceAllString(text, ""))
	q, err := Validate([]byte(cleaned))
	if err != nil {
		log.Printf("generated question rejected, using fallback: %v", err)
		return p.bank.Next(excluded)
	}
	return q
}

func (p *Provider) randomTopic() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return topics[p.rnd.Intn(len(topics))]
}
