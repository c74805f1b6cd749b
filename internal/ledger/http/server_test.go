package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/dto"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/engine"
)

const (
	testMatchID = "529ecfbe60e824d858b88c3f4a6a7e002a4e208c6ed32f4ec3a1c1834e0dfd3f"
	testBetID   = "67fdd7a79cf4de94db40504e779c25cf8db72daed52ad5ffdd53633fcb174c12"
)

type memEscrow struct {
	balances map[string]int64
}

func (m *memEscrow) Pull(_ context.Context, from string, amount int64) error {
	if m.balances[from] < amount {
		return errors.New("insufficient funds")
	}
	m.balances[from] -= amount
	return nil
}

func (m *memEscrow) Push(_ context.Context, to string, amount int64) error {
	m.balances[to] += amount
	return nil
}

type noopSink struct{}

func (noopSink) MatchCreated(context.Context, engine.Match) error       { return nil }
func (noopSink) MatchUpdated(context.Context, engine.Match) error       { return nil }
func (noopSink) BetPlaced(context.Context, engine.Bet) error            { return nil }
func (noopSink) RewardClaimed(context.Context, engine.Bet, int64) error { return nil }
func (noopSink) BetRefunded(context.Context, engine.Bet) error          { return nil }

func newTestServer(balances map[string]int64) (*httptest.Server, *engine.Ledger) {
	l := engine.NewLedger("admin", &memEscrow{balances: balances}, noopSink{})
	srv := NewServer(zap.NewNop(), l)
	return httptest.NewServer(srv.Router()), l
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestCreateMatchEndpoint(t *testing.T) {
	ts, _ := newTestServer(nil)
	defer ts.Close()

	req := dto.CreateMatchRequest{
		CallerID:    "admin",
		MatchID:     testMatchID,
		Name:        "Grêmio x Internacional",
		Competition: "Brasileirão",
		ScheduledAt: 1718896779,
	}

	res := postJSON(t, ts.URL+"/matches", req)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	m := decode[dto.MatchResponse](t, res)
	assert.True(t, m.Exists)
	assert.Equal(t, "PENDING", m.Status)
	assert.Equal(t, []int64{0, 0, 0, 0}, m.Pools)

	// repetição do mesmo matchId -> 409
	res = postJSON(t, ts.URL+"/matches", req)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	// não-admin -> 403
	req.MatchID = "deadbeef"
	req.CallerID = "mallory"
	res = postJSON(t, ts.URL+"/matches", req)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()
}

func TestGetMatchUnknownReturnsExistsFalse(t *testing.T) {
	ts, _ := newTestServer(nil)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/matches/" + testMatchID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	m := decode[dto.MatchResponse](t, res)
	assert.False(t, m.Exists)
	assert.Equal(t, testMatchID, m.MatchID)
}

func TestBetAndClaimFlow(t *testing.T) {
	ts, _ := newTestServer(map[string]int64{"alice": 10000, "bob": 10000, "caro": 10000})
	defer ts.Close()

	create := dto.CreateMatchRequest{CallerID: "admin", MatchID: testMatchID, Name: "Corinthians x Santos", Competition: "Paulistão"}
	res := postJSON(t, ts.URL+"/matches", create)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	// aposta em partida desconhecida -> 404
	res = postJSON(t, ts.URL+"/bets", dto.CreateBetRequest{CallerID: "alice", MatchID: "deadbeef", BetID: testBetID, Outcome: "HOME_WIN", Amount: 100})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	// stake não-positiva -> 400
	res = postJSON(t, ts.URL+"/bets", dto.CreateBetRequest{CallerID: "alice", MatchID: testMatchID, BetID: testBetID, Outcome: "HOME_WIN", Amount: 0})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	// apostas válidas
	res = postJSON(t, ts.URL+"/bets", dto.CreateBetRequest{CallerID: "alice", MatchID: testMatchID, BetID: testBetID, Outcome: "HOME_WIN", Amount: 5000})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()
	res = postJSON(t, ts.URL+"/bets", dto.CreateBetRequest{CallerID: "bob", MatchID: testMatchID, BetID: "bet-two", Outcome: "HOME_WIN", Amount: 4000})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()
	res = postJSON(t, ts.URL+"/bets", dto.CreateBetRequest{CallerID: "caro", MatchID: testMatchID, BetID: "bet-three", Outcome: "AWAY_WIN", Amount: 5000})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	// betId duplicado -> 409
	res = postJSON(t, ts.URL+"/bets", dto.CreateBetRequest{CallerID: "alice", MatchID: testMatchID, BetID: testBetID, Outcome: "DRAW", Amount: 10})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	// odds refletem os pools
	res, err := http.Get(ts.URL + "/matches/" + testMatchID + "/odds")
	require.NoError(t, err)
	odds := decode[dto.OddsResponse](t, res)
	require.Len(t, odds.Pools, 4)
	assert.Equal(t, dto.PoolEntry{Outcome: "HOME_WIN", Total: 9000}, odds.Pools[0])
	assert.Equal(t, dto.PoolEntry{Outcome: "AWAY_WIN", Total: 5000}, odds.Pools[2])

	// claim antes da resolução -> 409
	res = postJSON(t, ts.URL+"/bets/"+testBetID+"/claim", dto.ClaimRequest{CallerID: "alice"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	// resolve e aposta tardia -> 409
	res = postJSON(t, ts.URL+"/matches/update", dto.UpdateMatchRequest{CallerID: "admin", MatchID: testMatchID, Status: "FINISHED", Result: "HOME_WIN"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
	res = postJSON(t, ts.URL+"/bets", dto.CreateBetRequest{CallerID: "alice", MatchID: testMatchID, BetID: "bet-late", Outcome: "HOME_WIN", Amount: 10})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	// claim de terceiro -> 403; aposta perdedora -> 409
	res = postJSON(t, ts.URL+"/bets/"+testBetID+"/claim", dto.ClaimRequest{CallerID: "bob"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()
	res = postJSON(t, ts.URL+"/bets/bet-three/claim", dto.ClaimRequest{CallerID: "caro"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	// claim vencedor: floor(5000*14000/9000) = 7777
	res = postJSON(t, ts.URL+"/bets/"+testBetID+"/claim", dto.ClaimRequest{CallerID: "alice"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	claim := decode[dto.ClaimResponse](t, res)
	assert.Equal(t, int64(7777), claim.Payout)

	// segundo claim -> 409
	res = postJSON(t, ts.URL+"/bets/"+testBetID+"/claim", dto.ClaimRequest{CallerID: "alice"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	// projeção da aposta
	res, err = http.Get(ts.URL + "/bets/" + testBetID)
	require.NoError(t, err)
	b := decode[dto.BetResponse](t, res)
	assert.True(t, b.Exists)
	assert.True(t, b.Claimed)
}

func TestRefundFlow(t *testing.T) {
	ts, _ := newTestServer(map[string]int64{"alice": 1000})
	defer ts.Close()

	res := postJSON(t, ts.URL+"/matches", dto.CreateMatchRequest{CallerID: "admin", MatchID: testMatchID, Name: "São Paulo x Vasco", Competition: "Copa do Brasil"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()
	res = postJSON(t, ts.URL+"/bets", dto.CreateBetRequest{CallerID: "alice", MatchID: testMatchID, BetID: testBetID, Outcome: "DRAW", Amount: 400})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	// refund antes do cancelamento -> 409
	res = postJSON(t, ts.URL+"/bets/"+testBetID+"/refund", dto.RefundRequest{CallerID: "alice"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, ts.URL+"/matches/update", dto.UpdateMatchRequest{CallerID: "admin", MatchID: testMatchID, Status: "CANCELLED"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, ts.URL+"/bets/"+testBetID+"/refund", dto.RefundRequest{CallerID: "alice"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	refund := decode[dto.RefundResponse](t, res)
	assert.Equal(t, int64(400), refund.Amount)

	res = postJSON(t, ts.URL+"/bets/"+testBetID+"/refund", dto.RefundRequest{CallerID: "alice"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()
}

func TestSetAdminEndpoint(t *testing.T) {
	ts, l := newTestServer(nil)
	defer ts.Close()

	res := postJSON(t, ts.URL+"/admin", dto.SetAdminRequest{CallerID: "mallory", NewAdmin: "mallory"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, ts.URL+"/admin", dto.SetAdminRequest{CallerID: "admin", NewAdmin: "root"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
	assert.True(t, l.IsAdmin("root"))
}
