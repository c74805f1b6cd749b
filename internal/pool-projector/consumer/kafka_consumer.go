package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/pool-projector/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/pool-projector/repository"
	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/topics"
)

// Projector consome os eventos do ledger (todos os tópicos do grupo) e
// materializa o read model no Postgres e o cache de pools no Redis.
// Mensagens que falham de forma definitiva vão para a DLQ em vez de
// travar a partição
type Projector struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache
	DLQ    *kafka.Writer // opcional

	OnConsumed func(topic string) // métricas (counter++)
	OnPersist  func()             // métricas
	OnError    func(string)       // métricas por fase

	// Após materializar uma mudança de pool, recebe o snapshot para broadcast
	OnAfterApply func(s events.PoolSnapshot)
}

// Run inicia o loop principal de consumo e projeção dos eventos
func (p *Projector) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.countError("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed(m.Topic)
		}

		if err := p.apply(ctx, m.Topic, m.Value); err != nil {
			p.Log.Error("apply event failed",
				zap.String("topic", m.Topic),
				zap.ByteString("key", m.Key),
				zap.Error(err),
			)
			p.countError("apply")
			p.toDLQ(ctx, m)
			continue
		}

		if p.OnPersist != nil {
			p.OnPersist()
		}
	}
}

// apply despacha o evento conforme o tópico de origem
func (p *Projector) apply(ctx context.Context, topic string, value []byte) error {
	switch topic {
	case topics.MatchCreated:
		var ev events.MatchCreated
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode match_created: %w", err)
		}
		return p.Repo.UpsertMatch(ctx, ev)

	case topics.MatchUpdated:
		var ev events.MatchUpdated
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode match_updated: %w", err)
		}
		return p.Repo.UpdateMatchStatus(ctx, ev)

	case topics.BetPlaced:
		var ev events.BetPlaced
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode bet_placed: %w", err)
		}
		if err := p.Repo.InsertBet(ctx, ev); err != nil {
			return err
		}
		return p.refreshPools(ctx, ev.MatchID)

	case topics.RewardClaimed:
		var ev events.RewardClaimed
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode reward_claimed: %w", err)
		}
		return p.Repo.MarkClaimed(ctx, ev)

	case topics.BetRefunded:
		var ev events.BetRefunded
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode bet_refunded: %w", err)
		}
		if err := p.Repo.MarkRefunded(ctx, ev); err != nil {
			return err
		}
		// o reembolso não carrega o matchId; o read model resolve pelo betId
		return p.refreshPoolsByBet(ctx, ev.BetID)
	}

	p.Log.Warn("unexpected topic", zap.String("topic", topic))
	return nil
}

// refreshPools relê os pools da partida, atualiza o cache e dispara broadcast
func (p *Projector) refreshPools(ctx context.Context, matchID string) error {
	pools, err := p.Repo.GetPools(ctx, matchID)
	if err != nil {
		return err
	}
	snap := events.PoolSnapshot{
		MatchID:   matchID,
		Pools:     pools,
		TotalPool: pools.HomeWin + pools.Draw + pools.AwayWin + pools.Other,
		UpdatedAt: time.Now().UTC(),
	}

	if err := p.Cache.SetCurrent(ctx, snap); err != nil {
		// cache indisponível não bloqueia a projeção
		p.Log.Warn("redis set failed", zap.Error(err))
		p.countError("cache")
	}

	if p.OnAfterApply != nil {
		p.OnAfterApply(snap)
	}
	return nil
}

func (p *Projector) refreshPoolsByBet(ctx context.Context, betID string) error {
	matchID, err := p.Repo.MatchIDForBet(ctx, betID)
	if err != nil || matchID == "" {
		return err
	}
	return p.refreshPools(ctx, matchID)
}

// toDLQ publica a mensagem problemática na fila morta, se configurada
func (p *Projector) toDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.DLQ.WriteMessages(wctx, kafka.Message{Key: m.Key, Value: m.Value}); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.countError("dlq")
	}
}

func (p *Projector) countError(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
