package question

import (
	"math/rand"
	"sync"

	"sense-hacker-service/internal/domain"
)

// FallbackBank holds a fixed set of pre-authored questions used whenever the
// generator is unavailable or returns an invalid payload. The bank itself is
// never mutated; exclusion policy lives with the caller.
type FallbackBank struct {
	questions []domain.Question

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFallbackBank builds a bank over the default question set.
func NewFallbackBank(rnd *rand.Rand) *FallbackBank {
	return NewFallbackBankWith(defaultFallbackQuestions(), rnd)
}

// NewFallbackBankWith builds a bank over a custom question set (tests).
func NewFallbackBankWith(questions []domain.Question, rnd *rand.Rand) *FallbackBank {
	return &FallbackBank{questions: questions, rnd: rnd}
}

// Size reports the number of distinct questions in the bank.
func (b *FallbackBank) Size() int {
	return len(b.questions)
}

// Next returns a uniformly random question whose text is not excluded.
// When every question is excluded the exclusion set is treated as exhausted
// and a random question is returned regardless.
func (b *FallbackBank) Next(excluded []string) domain.Question {
	skip := make(map[string]struct{}, len(excluded))
	for _, text := range excluded {
		skip[text] = struct{}{}
	}

	available := make([]domain.Question, 0, len(b.questions))
	for _, q := range b.questions {
		if _, ok := skip[q.Text]; !ok {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		available = b.questions
	}

	b.mu.Lock()
	idx := b.rnd.Intn(len(available))
	b.mu.Unlock()
	return available[idx]
}

func defaultFallbackQuestions() []domain.Question {
	return []domain.Question{
		{
			Text: "Which of these is NOT a good password practice?",
			Options: []string{
				"Using a different password for each account",
				"Using a password with at least 12 characters",
				"Using a password that includes numbers and symbols",
				"Using the same password for all your online accounts",
			},
			Answer:      "Using the same password for all your online accounts",
			Explanation: "Using the same password for multiple accounts is dangerous because if one account gets compromised, all your accounts become vulnerable.",
		},
		{
			Text: "What should you do if you receive a suspicious email asking for your personal information?",
			Options: []string{
				"Reply with your information immediately",
				"Click on all the links to verify they're safe",
				"Delete the email and report it as spam",
				"Forward it to all your contacts",
			},
			Answer:      "Delete the email and report it as spam",
			Explanation: "Suspicious emails asking for personal information are likely phishing attempts. Never provide personal information via email and always report such emails.",
		},
		{
			Text: "Which of these is a sign of a phishing website?",
			Options: []string{
				"HTTPS encryption (padlock icon)",
				"Misspelled URLs or domain names",
				"Professional design and layout",
				"Contact information clearly displayed",
			},
			Answer:      "Misspelled URLs or domain names",
			Explanation: "Phishing websites often use URLs that look similar to legitimate sites but contain misspellings or different domains to trick users.",
		},
		{
			Text: "What is two-factor authentication (2FA)?",
			Options: []string{
				"Using two different passwords",
				"An additional security step beyond just a password",
				"Having two email accounts",
				"Using both uppercase and lowercase letters",
			},
			Answer:      "An additional security step beyond just a password",
			Explanation: "Two-factor authentication adds an extra layer of security by requiring a second form of verification, like a code sent to your phone.",
		},
		{
			Text: "Which of these is the safest way to connect to the internet in public?",
			Options: []string{
				"Use any available free WiFi",
				"Connect to networks without passwords",
				"Use your mobile data or a VPN",
				"Share your hotspot password with strangers",
			},
			Answer:      "Use your mobile data or a VPN",
			Explanation: "Public WiFi networks can be insecure. Using your mobile data or a VPN provides better protection for your online activities.",
		},
		{
			Text: "What is phishing?",
			Options: []string{
				"A type of cyber attack to steal information",
				"A way to catch fish",
				"A programming language",
				"A secure login method",
			},
			Answer:      "A type of cyber attack to steal information",
			Explanation: "Phishing is a cyber attack where attackers trick users into revealing sensitive information.",
		},
		{
			Text: "Which password is the strongest?",
			Options: []string{
				"password123",
				"MyP@ssw0rd!2024",
				"123456789",
				"qwerty",
			},
			Answer:      "MyP@ssw0rd!2024",
			Explanation: "Strong passwords should be long, include mixed characters, numbers, and symbols, and be unique.",
		},
		{
			Text: "What should you do before clicking a link in an email?",
			Options: []string{
				"Click it immediately",
				"Verify the sender and hover over the link",
				"Forward it to friends",
				"Reply to the email",
			},
			Answer:      "Verify the sender and hover over the link",
			Explanation: "Always verify suspicious emails and check where links actually lead before clicking them.",
		},
	}
}
