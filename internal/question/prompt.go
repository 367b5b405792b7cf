package question

import (
	"fmt"
	"strings"
	"time"

	"sense-hacker-service/internal/domain"
)

// topics is the fixed catalog a generation request draws from; a random topic
// per request keeps the generator from converging on the same questions.
var topics = []string{
	"password security", "phishing attacks", "social engineering", "malware protection",
	"network security", "data privacy", "two-factor authentication", "secure browsing",
	"email security", "mobile security", "ransomware", "identity theft",
	"secure communication", "backup strategies", "software updates", "public WiFi safety",
}

// maxPromptExclusions caps how many recent question texts are sent back to
// the generator as negative examples.
const maxPromptExclusions = 3

// buildPrompt assembles the generation request for one question. The
// freshness timestamp discourages cached completions; the most recent
// exclusions steer the generator away from repeats.
func buildPrompt(level domain.Difficulty, topic string, ts time.Time, excluded []string) string {
	var b strings.Builder
	switch level {
	case domain.DifficultyBeginner:
		fmt.Fprintf(&b, "Generate a unique, beginner-friendly multiple-choice question about %s in cybersecurity. Focus on practical, everyday scenarios that beginners can relate to. Include 4 options, the correct answer, and a short, friendly explanation.", topic)
	case domain.DifficultyIntermediate:
		fmt.Fprintf(&b, "Generate a unique, intermediate multiple-choice question about %s in cybersecurity. Focus on more technical concepts and real-world applications. Include 4 options, the correct answer, and a detailed explanation.", topic)
	default:
		fmt.Fprintf(&b, "Generate a unique, advanced multiple-choice question about %s in cybersecurity. Focus on complex scenarios, advanced threats, or technical implementations. Include 4 options, the correct answer, and a comprehensive explanation.", topic)
	}
	fmt.Fprintf(&b, " Make sure this is different from previous questions. Current timestamp: %d.", ts.UnixMilli())
	b.WriteString(" Return JSON: {question, options, answer, explanation}")

	if len(excluded) > 0 {
		recent := excluded
		if len(recent) > maxPromptExclusions {
			recent = recent[len(recent)-maxPromptExclusions:]
		}
		fmt.Fprintf(&b, " Avoid generating questions similar to these already asked: %s", strings.Join(recent, ", "))
	}
	return b.String()
}
