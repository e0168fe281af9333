package main

import (
	"context"
	"log"
	"time"
)

// fallbackReply is spoken when context or generation fails. A caller on a
// phone line cannot be shown an error, so the conversation degrades to this
// fixed apology and continues to the next turn.
const fallbackReply = "I am currently unable to access the bus information system. Please try again in a few minutes or visit your nearest Daewoo Express terminal for assistance."

// ConversationTurnController drives one caller-utterance to spoken-reply
// exchange. Each turn is independent: no conversation history is retained.
type ConversationTurnController struct {
	busData *BusDataProvider
	replies *ReplyGenerator
	timeout time.Duration
}

// NewConversationTurnController wires the context and generation layers
func NewConversationTurnController(busData *BusDataProvider, replies *ReplyGenerator) *ConversationTurnController {
	return &ConversationTurnController{
		busData: busData,
		replies: replies,
		timeout: 30 * time.Second,
	}
}

// HandleUtterance returns the spoken reply for one caller utterance.
// It never fails: any error on the way is logged and converted to the
// fixed fallback so the call does not dead-end.
func (c *ConversationTurnController) HandleUtterance(ctx context.Context, callSid, utterance string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	busData := c.busData.GetBusData(ctx)

	reply, err := c.replies.Generate(ctx, utterance, busData)
	if err != nil {
		log.Printf("❌ Error while generating AI reply for call %s: %v", callSid, err)
		return fallbackReply
	}
	return reply
}
