package engine

// Outcome é um resultado possível de uma partida (e a seleção de uma aposta)
// A ordem dos valores define a ordem dos pools em GetOdds
type Outcome uint8

const (
	HomeWin Outcome = iota
	Draw
	AwayWin
	Other

	// NumOutcomes é o tamanho do vetor de pools por partida
	NumOutcomes = 4
)

// Valid informa se o valor está dentro do enum
func (o Outcome) Valid() bool { return o < NumOutcomes }

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "HOME_WIN"
	case Draw:
		return "DRAW"
	case AwayWin:
		return "AWAY_WIN"
	case Other:
		return "OTHER"
	}
	return "UNKNOWN"
}

// ParseOutcome converte a representação textual usada na API e nos eventos
func ParseOutcome(s string) (Outcome, bool) {
	switch s {
	case "HOME_WIN":
		return HomeWin, true
	case "DRAW":
		return Draw, true
	case "AWAY_WIN":
		return AwayWin, true
	case "OTHER":
		return Other, true
	}
	return 0, false
}

// MatchStatus é o estado do ciclo de vida de uma partida
// Transições válidas: PENDING -> FINISHED, PENDING -> CANCELLED (ambos terminais)
type MatchStatus uint8

const (
	StatusPending MatchStatus = iota
	StatusFinished
	StatusCancelled
)

func (s MatchStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusFinished:
		return "FINISHED"
	case StatusCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// ParseStatus converte a representação textual usada na API e nos eventos
func ParseStatus(s string) (MatchStatus, bool) {
	switch s {
	case "PENDING":
		return StatusPending, true
	case "FINISHED":
		return StatusFinished, true
	case "CANCELLED":
		return StatusCancelled, true
	}
	return 0, false
}

// Match é o registro autoritativo de uma partida no ledger
// Pools[o] é a soma das stakes não-reembolsadas apostadas no outcome o
type Match struct {
	ID          string
	Name        string
	Competition string
	ScheduledAt int64 // unix seconds
	Status      MatchStatus
	Result      Outcome // significativo apenas quando Status = FINISHED
	Exists      bool
	Pools       [NumOutcomes]int64
}

// TotalPool é a soma de todos os pools da partida
func (m Match) TotalPool() int64 {
	var total int64
	for _, p := range m.Pools {
		total += p
	}
	return total
}

// Bet é o registro autoritativo de uma aposta, escopada a uma partida
type Bet struct {
	ID       string
	MatchID  string
	Bettor   string
	Outcome  Outcome
	Amount   int64
	Exists   bool
	Claimed  bool
	Refunded bool
}
