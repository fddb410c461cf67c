package store

import "github.com/paperchat/backend/internal/models"

// reconstructTurns folds an ordered message log into paired turns. A turn is
// emitted only when a user message is immediately followed by an assistant
// message. A user message that never got a reply is dropped, as is an
// assistant message with no open question before it. Both are policy, not
// faults: surfacing unanswered questions as pending turns is a product
// decision this layer does not take.
func reconstructTurns(messages []models.Message) []models.Turn {
	turns := make([]models.Turn, 0, len(messages)/2)

	var pending *models.Turn
	index := 1
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			// A new question discards any still-open one.
			pending = &models.Turn{
				TurnIndex: index,
				Question:  msg.Content,
				Timestamp: msg.Timestamp,
			}
		case models.RoleAssistant:
			if pending == nil {
				continue
			}
			pending.Answer = msg.Content
			pending.Context = msg.Context
			turns = append(turns, *pending)
			pending = nil
			index++
		}
	}

	return turns
}
