package services

import (
	"context"
	"fmt"
	"strings"
)

const chatbotResultLimit = 10

// ChatAnswer is the chatbot's reply to an admin query.
type ChatAnswer struct {
	Answer string          `json:"answer"`
	Items  []ChatCandidate `json:"items"`
}

// ChatCandidate is a resume owner surfaced by a chatbot query.
type ChatCandidate struct {
	UserID int      `json:"user_id"`
	Skills []string `json:"skills"`
}

// ChatbotService answers a small set of canned queries over stored
// resumes. Unrecognized queries get a hint instead of an error.
type ChatbotService struct {
	resumes ResumeRepository
}

func NewChatbotService(resumes ResumeRepository) *ChatbotService {
	return &ChatbotService{resumes: resumes}
}

func (s *ChatbotService) Query(ctx context.Context, query string) (ChatAnswer, error) {
	q := strings.ToLower(query)

	if strings.Contains(q, "top python") {
		resumes, err := s.resumes.FindBySkill(ctx, "python", chatbotResultLimit)
		if err != nil {
			return ChatAnswer{}, err
		}

		items := make([]ChatCandidate, 0, len(resumes))
		for _, resume := range resumes {
			items = append(items, ChatCandidate{
				UserID: resume.UserID,
				Skills: resume.Skills,
			})
		}
		return ChatAnswer{
			Answer: fmt.Sprintf("Found %d candidates mentioning Python", len(items)),
			Items:  items,
		}, nil
	}

	return ChatAnswer{
		Answer: "Query not recognized in demo. Try: 'Top Python skill candidates'.",
		Items:  []ChatCandidate{},
	}, nil
}
