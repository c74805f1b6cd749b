package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/engine"
	sharedkafka "github.com/radieske/parimutuel-ledger-poc/internal/shared/kafka"
	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/topics"
)

// KafkaPublisher implementa engine.EventSink publicando cada mutação do
// ledger no tópico correspondente. Um writer por tópico, chaveado pelo id
// do registro para preservar ordem por partida/aposta
type KafkaPublisher struct {
	matchCreated  *sharedkafka.Writer
	matchUpdated  *sharedkafka.Writer
	betPlaced     *sharedkafka.Writer
	rewardClaimed *sharedkafka.Writer
	betRefunded   *sharedkafka.Writer
}

func NewKafkaPublisher(brokers string) *KafkaPublisher {
	return &KafkaPublisher{
		matchCreated:  sharedkafka.NewWriter(brokers, topics.MatchCreated),
		matchUpdated:  sharedkafka.NewWriter(brokers, topics.MatchUpdated),
		betPlaced:     sharedkafka.NewWriter(brokers, topics.BetPlaced),
		rewardClaimed: sharedkafka.NewWriter(brokers, topics.RewardClaimed),
		betRefunded:   sharedkafka.NewWriter(brokers, topics.BetRefunded),
	}
}

// Close encerra todos os writers
func (p *KafkaPublisher) Close() {
	_ = p.matchCreated.Close()
	_ = p.matchUpdated.Close()
	_ = p.betPlaced.Close()
	_ = p.rewardClaimed.Close()
	_ = p.betRefunded.Close()
}

func (p *KafkaPublisher) MatchCreated(ctx context.Context, m engine.Match) error {
	return publish(ctx, p.matchCreated, m.ID, events.MatchCreated{
		MatchID:     m.ID,
		Name:        m.Name,
		Competition: m.Competition,
		ScheduledAt: m.ScheduledAt,
		TsUnixMs:    time.Now().UnixMilli(),
	})
}

func (p *KafkaPublisher) MatchUpdated(ctx context.Context, m engine.Match) error {
	ev := events.MatchUpdated{
		MatchID:  m.ID,
		Status:   m.Status.String(),
		TsUnixMs: time.Now().UnixMilli(),
	}
	// em CANCELLED não há resultado a publicar
	if m.Status == engine.StatusFinished {
		ev.Result = m.Result.String()
	}
	return publish(ctx, p.matchUpdated, m.ID, ev)
}

func (p *KafkaPublisher) BetPlaced(ctx context.Context, b engine.Bet) error {
	return publish(ctx, p.betPlaced, b.MatchID, events.BetPlaced{
		MatchID:  b.MatchID,
		BetID:    b.ID,
		Bettor:   b.Bettor,
		Outcome:  b.Outcome.String(),
		Amount:   b.Amount,
		TsUnixMs: time.Now().UnixMilli(),
	})
}

func (p *KafkaPublisher) RewardClaimed(ctx context.Context, b engine.Bet, payout int64) error {
	return publish(ctx, p.rewardClaimed, b.MatchID, events.RewardClaimed{
		BetID:    b.ID,
		Claimant: b.Bettor,
		Payout:   payout,
		TsUnixMs: time.Now().UnixMilli(),
	})
}

func (p *KafkaPublisher) BetRefunded(ctx context.Context, b engine.Bet) error {
	return publish(ctx, p.betRefunded, b.MatchID, events.BetRefunded{
		BetID:    b.ID,
		Bettor:   b.Bettor,
		Amount:   b.Amount,
		TsUnixMs: time.Now().UnixMilli(),
	})
}

func publish(ctx context.Context, w *sharedkafka.Writer, key string, payload any) error {
	b, _ := json.Marshal(payload)
	return sharedkafka.WriteJSON(ctx, w, key, b)
}
