// Package recommend ranks outfield players into punt, defensive and sell
// lists using percentile-normalised per-90 metrics weighted by position.
package recommend

import (
	"sort"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

const (
	// MinMinutes is the season minutes a player needs to be scored.
	MinMinutes = 450
	// PuntCeiling is the exclusive ownership ceiling for punts.
	PuntCeiling = 0.40
	// DefensiveCeiling is the exclusive ownership ceiling for defensive picks.
	DefensiveCeiling = 1.0
	// SellThreshold is the sell score above which an owned player is listed.
	SellThreshold = 0.5
	// DefaultLimit caps each list when Input.Limit is unset.
	DefaultLimit = 10
)

// Weights are the per-position weights of each metric. They sum to 1.
type Weights struct {
	XG       float64 `json:"xg"`
	XA       float64 `json:"xa"`
	XGC      float64 `json:"xgc"`
	CS       float64 `json:"cs"`
	Form     float64 `json:"form"`
	Fixtures float64 `json:"fixtures"`
}

var PositionWeights = map[fpl.Position]Weights{
	fpl.Defender:   {XG: 0.10, XA: 0.10, XGC: 0.20, CS: 0.15, Form: 0.20, Fixtures: 0.25},
	fpl.Midfielder: {XG: 0.25, XA: 0.20, Form: 0.25, Fixtures: 0.30},
	fpl.Forward:    {XG: 0.35, XA: 0.10, Form: 0.25, Fixtures: 0.30},
}

type Input struct {
	Players []fpl.Element
	// Ownership maps element id to the fraction of league teams starting it.
	Ownership map[int]float64
	// Index supplies upcoming fixtures for fixture ease. May be nil.
	Index *fpl.Index
	// Gameweek is the current gameweek; fixtures after it are scored.
	Gameweek int
	Limit    int
}

// Metrics holds the raw values and their percentiles for one player.
type Metrics struct {
	XG90        float64 `json:"xg90"`
	XA90        float64 `json:"xa90"`
	XGC90       float64 `json:"xgc90"`
	CS90        float64 `json:"cs90"`
	Form        float64 `json:"form"`
	FixtureEase float64 `json:"fixture_ease"`

	XGPct   float64 `json:"xg_pct"`
	XAPct   float64 `json:"xa_pct"`
	XGCPct  float64 `json:"xgc_pct"`
	CSPct   float64 `json:"cs_pct"`
	FormPct float64 `json:"form_pct"`
	FixPct  float64 `json:"fixtures_pct"`
}

type Recommendation struct {
	Element   int          `json:"element"`
	Name      string       `json:"name"`
	Team      string       `json:"team,omitempty"`
	Position  fpl.Position `json:"position"`
	Ownership float64      `json:"ownership"`
	Score     float64      `json:"score"`
	Metrics   Metrics      `json:"metrics"`
}

type Result struct {
	Punts     []Recommendation `json:"punts"`
	Defensive []Recommendation `json:"defensive"`
	Sell      []Recommendation `json:"sell"`
}

// Eligible reports whether a player enters the scored population.
func Eligible(p fpl.Element) bool {
	if _, ok := PositionWeights[p.ElementType]; !ok {
		return false
	}
	return p.Status == fpl.StatusAvailable && p.Minutes >= MinMinutes
}

type scored struct {
	player fpl.Element
	m      Metrics
	buy    float64
	sell   float64
}

// Score ranks the eligible population. Clean sheet and goals-conceded
// percentiles are taken over eligible defenders only.
func Score(in Input) Result {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var pool []scored
	for _, p := range in.Players {
		if !Eligible(p) {
			continue
		}
		pool = append(pool, scored{player: p, m: rawMetrics(p, in.Index, in.Gameweek)})
	}

	var xg, xa, form, fix, xgc, cs []float64
	for _, s := range pool {
		xg = append(xg, s.m.XG90)
		xa = append(xa, s.m.XA90)
		form = append(form, s.m.Form)
		fix = append(fix, s.m.FixtureEase)
		if s.player.ElementType == fpl.Defender {
			xgc = append(xgc, s.m.XGC90)
			cs = append(cs, s.m.CS90)
		}
	}
	pXG, pXA, pForm, pFix := newPercentiles(xg), newPercentiles(xa), newPercentiles(form), newPercentiles(fix)
	pXGC, pCS := newPercentiles(xgc), newPercentiles(cs)

	for i := range pool {
		s := &pool[i]
		s.m.XGPct = pXG.Rank(s.m.XG90)
		s.m.XAPct = pXA.Rank(s.m.XA90)
		s.m.FormPct = pForm.Rank(s.m.Form)
		s.m.FixPct = pFix.Rank(s.m.FixtureEase)
		if s.player.ElementType == fpl.Defender {
			s.m.XGCPct = pXGC.Rank(s.m.XGC90)
			s.m.CSPct = pCS.Rank(s.m.CS90)
		}
		w := PositionWeights[s.player.ElementType]
		s.buy = buyScore(w, s.m)
		s.sell = sellScore(w, s.m)
	}

	var res Result
	for _, s := range pool {
		own := in.Ownership[s.player.ID]
		switch {
		case own < PuntCeiling:
			res.Punts = append(res.Punts, recommendation(s, own, s.buy, in.Index))
		case own < DefensiveCeiling:
			res.Defensive = append(res.Defensive, recommendation(s, own, s.buy, in.Index))
		}
		if own > 0 && s.sell > SellThreshold {
			res.Sell = append(res.Sell, recommendation(s, own, s.sell, in.Index))
		}
	}
	res.Punts = rank(res.Punts, limit)
	res.Defensive = rank(res.Defensive, limit)
	res.Sell = rank(res.Sell, limit)
	return res
}

func rawMetrics(p fpl.Element, ix *fpl.Index, gw int) Metrics {
	per90 := func(v float64) float64 {
		if p.Minutes <= 0 {
			return 0
		}
		return v * 90 / float64(p.Minutes)
	}
	m := Metrics{
		XG90:        per90(p.ExpectedGoals.Float()),
		XA90:        per90(p.ExpectedAssists.Float()),
		Form:        p.Form.Float(),
		FixtureEase: FixtureEase(ix, p.Team, gw),
	}
	if p.ElementType == fpl.Defender {
		m.XGC90 = per90(p.ExpectedGoalsConceded.Float())
		m.CS90 = per90(float64(p.CleanSheets))
	}
	return m
}

func buyScore(w Weights, m Metrics) float64 {
	return w.XG*m.XGPct +
		w.XA*m.XAPct +
		w.XGC*(1-m.XGCPct) +
		w.CS*m.CSPct +
		w.Form*m.FormPct +
		w.Fixtures*m.FixPct
}

// sellScore inverts the good metrics; a high goals-conceded percentile
// already counts against the player.
func sellScore(w Weights, m Metrics) float64 {
	return w.XG*(1-m.XGPct) +
		w.XA*(1-m.XAPct) +
		w.XGC*m.XGCPct +
		w.CS*(1-m.CSPct) +
		w.Form*(1-m.FormPct) +
		w.Fixtures*(1-m.FixPct)
}

func recommendation(s scored, own, score float64, ix *fpl.Index) Recommendation {
	r := Recommendation{
		Element:   s.player.ID,
		Name:      s.player.Name(),
		Position:  s.player.ElementType,
		Ownership: own,
		Score:     score,
		Metrics:   s.m,
	}
	if ix != nil {
		r.Team = ix.TeamShort(s.player.Team)
	}
	return r
}

func rank(list []Recommendation, limit int) []Recommendation {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].Element < list[j].Element
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}
