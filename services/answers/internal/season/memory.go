package season

// Memory answers directly from a fixture list. It is the reference the
// page generator renders from and the other backends are checked against.
type Memory struct {
	fixtures []Fixture
	table    []Standing
}

// NewMemory sorts a copy of fs by date and computes the table.
func NewMemory(fs []Fixture) *Memory {
	cp := make([]Fixture, len(fs))
	copy(cp, fs)
	SortFixtures(cp)
	return &Memory{fixtures: cp, table: Standings(cp)}
}

func (m *Memory) Name() string { return "memory" }

// Fixtures returns the fixtures in date order.
func (m *Memory) Fixtures() []Fixture { return m.fixtures }

// Table returns the league table.
func (m *Memory) Table() []Standing { return m.table }

func (m *Memory) Leader() (string, error) {
	if len(m.table) == 0 {
		return "", ErrNoData
	}
	return m.table[0].Team, nil
}

func (m *Memory) MatchesPlayed() (int, error) {
	if len(m.fixtures) == 0 {
		return 0, ErrNoData
	}
	return len(m.fixtures), nil
}

func (m *Memory) TotalGoals() (int, error) {
	if len(m.fixtures) == 0 {
		return 0, ErrNoData
	}
	n := 0
	for _, f := range m.fixtures {
		n += f.Goals()
	}
	return n, nil
}

func (m *Memory) TopScorer() (string, error) {
	best, ok := BestAttack(m.table)
	if !ok {
		return "", ErrNoData
	}
	return TopScorerLine(best.Team, best.GoalsFor), nil
}

func (m *Memory) TeamsOver70Goals() ([]string, error) {
	var out []string
	for _, s := range m.table {
		if s.GoalsFor > GoalThreshold {
			out = append(out, s.Team)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

func (m *Memory) November2008() ([]string, error) {
	return Lines(InMonth(m.fixtures, ReportYear, ReportMonth)), nil
}

func (m *Memory) ManUnitedHomeWins() (int, error) {
	for _, s := range m.table {
		if s.Team == HomeTeam {
			return HomeWins(m.fixtures, HomeTeam), nil
		}
	}
	return 0, ErrNoData
}

func (m *Memory) AwayWinsRanking() ([]string, error) {
	if len(m.fixtures) == 0 {
		return nil, ErrNoData
	}
	return RankAwayWins(AwayWins(m.fixtures)), nil
}

func (m *Memory) Top6AwayGoals() (string, error) {
	if len(m.table) == 0 {
		return "", ErrNoData
	}
	top := Teams(m.table)
	if len(top) > TopN {
		top = top[:TopN]
	}
	return AwayGoalsReport(top, AwayGoals(m.fixtures)), nil
}

func (m *Memory) FirstVsThird() (string, error) {
	if len(m.table) < 3 {
		return "", ErrNoData
	}
	return HeadToHeadReport(m.table[0].Team, m.table[2].Team, m.fixtures), nil
}
