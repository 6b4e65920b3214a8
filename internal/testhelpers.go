package internal

import (
	"time"
)

// CreateTestTranscript creates a transcript of a short chat between Ash (u1) and Misty (u2)
func CreateTestTranscript(id string) *Transcript {
	return CreateTestTranscriptWithMessages(id, []ChatMessage{
		{
			Text:       "Hello, anyone up for a battle?",
			Timestamp:  "3:04 PM",
			SenderName: "Ash",
			SenderID:   "u1",
		},
		{
			Text:       "Only if you bring Pikachu!",
			Timestamp:  "3:05 PM",
			SenderName: "Misty",
			SenderID:   "u2",
		},
	})
}

// CreateTestTranscriptWithMessages creates a transcript owned by Ash with custom messages
func CreateTestTranscriptWithMessages(id string, messages []ChatMessage) *Transcript {
	started := time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)
	return &Transcript{
		ID:          id,
		UserID:      "u1",
		DisplayName: "Ash",
		StartedAt:   started,
		EndedAt:     started.Add(10 * time.Minute),
		Messages:    messages,
	}
}

// CreateTestSession creates a logged in session for user id
func CreateTestSession(id, name, token string) *Session {
	return &Session{
		User:  User{ID: id, Name: name, Email: name + "@example.com"},
		Token: token,
	}
}
