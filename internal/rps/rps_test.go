package rps

import (
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
)

type stubSource struct {
	floats []float64
	ints   []int
}

func (s *stubSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *stubSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0] % n
	s.ints = s.ints[1:]
	return v
}

func TestWinnerRelation(t *testing.T) {
	for _, a := range Moves {
		for _, b := range Moves {
			got := Winner(a, b)
			switch {
			case a == b:
				if got != OutcomeDraw {
					t.Fatalf("Winner(%s,%s)=%s want draw", a, b, got)
				}
			case Beats(a, b):
				if got != OutcomePlayer {
					t.Fatalf("Winner(%s,%s)=%s want player", a, b, got)
				}
			default:
				if got != OutcomeAI {
					t.Fatalf("Winner(%s,%s)=%s want ai", a, b, got)
				}
			}
		}
	}
	if Winner(Rock, Scissors) != OutcomePlayer || Winner(Paper, Rock) != OutcomePlayer || Winner(Scissors, Paper) != OutcomePlayer {
		t.Fatalf("beats relation broken")
	}
}

func TestCounterAlwaysWins(t *testing.T) {
	for _, m := range Moves {
		if got := Winner(m, Counter(m)); got != OutcomeAI {
			t.Fatalf("counter of %s does not win: %s", m, got)
		}
	}
}

func TestParseMoveAliases(t *testing.T) {
	cases := map[string]Move{"Rock": Rock, " p ": Paper, "가위": Scissors, "바위": Rock, "보": Paper}
	for in, want := range cases {
		got, err := ParseMove(in)
		if err != nil || got != want {
			t.Fatalf("ParseMove(%q)=%s,%v want %s", in, got, err, want)
		}
	}
	if _, err := ParseMove("lizard"); err == nil {
		t.Fatalf("expected error for lizard")
	}
}

func TestTierThresholds(t *testing.T) {
	p := DefaultDifficulty()
	cases := []struct {
		w, l int
		want Tier
	}{
		{2, 0, TierHard}, {5, 0, TierHard}, {0, 2, TierEasy}, {0, 5, TierEasy}, {0, 0, TierMedium}, {1, 1, TierMedium},
	}
	for _, c := range cases {
		if got := p.Tier(c.w, c.l); got != c.want {
			t.Fatalf("Tier(%d,%d)=%s want %s", c.w, c.l, got, c.want)
		}
	}
}

func TestShouldFollowBoundary(t *testing.T) {
	p := DefaultDifficulty()
	cases := []struct {
		tier   Tier
		sample float64
		want   bool
	}{
		{TierHard, 0.899, true}, {TierHard, 0.9, false},
		{TierMedium, 0.699, true}, {TierMedium, 0.7, false},
		{TierEasy, 0.399, true}, {TierEasy, 0.4, false},
	}
	for _, c := range cases {
		src := &stubSource{floats: []float64{c.sample}}
		if got := p.ShouldFollow(c.tier, src); got != c.want {
			t.Fatalf("ShouldFollow(%s,%v)=%v want %v", c.tier, c.sample, got, c.want)
		}
	}
}

func TestShouldFollowRateHard(t *testing.T) {
	p := DefaultDifficulty()
	src := NewSource(42)
	const n = 10000
	hits := 0
	for i := 0; i < n; i++ {
		if p.ShouldFollow(TierHard, src) {
			hits++
		}
	}
	rate := float64(hits) / n
	if math.Abs(rate-0.9) > 0.02 {
		t.Fatalf("follow rate %.3f not near 0.9", rate)
	}
}

func TestDifficultyValidate(t *testing.T) {
	if err := DefaultDifficulty().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	bad := DefaultDifficulty()
	bad.FollowHard = 1.2
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for probability > 1")
	}
	bad = DefaultDifficulty()
	bad.HardWinStreak = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero streak threshold")
	}
}

func TestFallbackEmpty(t *testing.T) {
	p := Fallback(nil, false)
	if p.PredictedMove != Rock || p.Confidence != 30 || p.PlayerStyle != "random" {
		t.Fatalf("unexpected cold fallback: %+v", p)
	}
	if p.Explanation == "" || p.CoachTip == "" {
		t.Fatalf("cold fallback must carry text")
	}
}

func TestFallbackTagsOnlyWithVision(t *testing.T) {
	h := History{{Player: Paper}}
	plain := Fallback(h, false)
	if plain.EmotionalState != "" || plain.MindGameEvent != "" {
		t.Fatalf("non-vision fallback must leave tags empty: %+v", plain)
	}
	vision := Fallback(h, true)
	if vision.EmotionalState != EmotionNeutral || vision.MindGameEvent != MindGameNone {
		t.Fatalf("vision fallback must fill tags: %+v", vision)
	}
	if cold := Fallback(nil, true); cold.EmotionalState != EmotionNeutral || cold.MindGameEvent != MindGameNone {
		t.Fatalf("cold vision fallback must fill tags: %+v", cold)
	}
}

func TestFallbackArgmax(t *testing.T) {
	h := History{{Player: Rock}, {Player: Rock}, {Player: Paper}}
	p := Fallback(h, false)
	if p.PredictedMove != Rock || p.Confidence != 60 {
		t.Fatalf("got %+v", p)
	}
	if p.Explanation != "You seem to favor rock." {
		t.Fatalf("explanation: %q", p.Explanation)
	}
}

func TestFallbackTieGoesToEnumerationOrder(t *testing.T) {
	h := History{{Player: Scissors}, {Player: Paper}}
	if got := Fallback(h, false).PredictedMove; got != Paper {
		t.Fatalf("tie should resolve to paper, got %s", got)
	}
	h = History{{Player: Scissors}, {Player: Rock}, {Player: Paper}}
	if got := Fallback(h, false).PredictedMove; got != Rock {
		t.Fatalf("three-way tie should resolve to rock, got %s", got)
	}
}

func TestResolveFollowsOrRandomizes(t *testing.T) {
	p := DefaultDifficulty()
	pred := Prediction{PredictedMove: Rock}

	res := ResolveAIMove(pred, TierMedium, p, &stubSource{floats: []float64{0.1}})
	if !res.Followed || res.Move != Paper {
		t.Fatalf("expected counter paper, got %+v", res)
	}

	res = ResolveAIMove(pred, TierMedium, p, &stubSource{floats: []float64{0.95}, ints: []int{2}})
	if res.Followed || res.Move != Scissors || res.Optimal != Paper {
		t.Fatalf("expected random scissors, got %+v", res)
	}
}

func TestHistoryPrependCaps(t *testing.T) {
	var h History
	for i := 0; i < MaxHistory+5; i++ {
		h = h.Prepend(RoundRecord{Player: Moves[i%3], AI: Rock, Winner: OutcomeDraw})
	}
	if len(h) != MaxHistory {
		t.Fatalf("len=%d want %d", len(h), MaxHistory)
	}
	if h[0].Player != Moves[(MaxHistory+4)%3] {
		t.Fatalf("newest entry not first")
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(nil); got != NoHistory {
		t.Fatalf("empty summary: %q", got)
	}
	h := History{
		{Player: Rock, AI: Paper, Winner: OutcomeAI},
		{Player: Scissors, AI: Scissors, Winner: OutcomeDraw},
	}
	got := Summarize(h)
	for _, want := range []string{"Rounds: 2", "R:1, P:0, S:1", "P:rock/AI:paper", "P:scissors/AI:scissors"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q missing %q", got, want)
		}
	}
}

func TestStatsApply(t *testing.T) {
	s := Stats{}.Apply(OutcomePlayer, DrawKeepStreaks).Apply(OutcomePlayer, DrawKeepStreaks)
	if s.Wins != 2 || s.WinStreak != 2 || s.LoseStreak != 0 {
		t.Fatalf("after two wins: %+v", s)
	}
	s = s.Apply(OutcomeDraw, DrawKeepStreaks)
	if s.Draws != 1 || s.WinStreak != 2 {
		t.Fatalf("keep policy changed streak: %+v", s)
	}
	s = s.Apply(OutcomeAI, DrawKeepStreaks)
	if s.WinStreak != 0 || s.LoseStreak != 1 || s.Losses != 1 {
		t.Fatalf("after loss: %+v", s)
	}
	s = s.Apply(OutcomeDraw, DrawResetStreaks)
	if s.LoseStreak != 0 || s.WinStreak != 0 {
		t.Fatalf("reset policy kept streak: %+v", s)
	}
}

func TestMovementScoreAndEmotion(t *testing.T) {
	prev := make([]byte, 64*16)
	cur := make([]byte, 64*16)
	for i := 0; i < len(cur); i += 16 {
		cur[i] = 255
	}
	// 64 samples * 255 / 500 = 32
	if got := MovementScore(prev, cur); got != 32 {
		t.Fatalf("movement=%d want 32", got)
	}
	if InferEmotion(32) != EmotionAgitated || InferEmotion(20) != EmotionCalmFocused {
		t.Fatalf("emotion threshold wrong")
	}
	big := make([]byte, 4000*16)
	for i := 0; i < len(big); i += 16 {
		big[i] = 255
	}
	if got := MovementScore(make([]byte, len(big)), big); got != 100 {
		t.Fatalf("movement not capped: %d", got)
	}
}

func TestSourceSharedAcrossGoroutines(t *testing.T) {
	const workers, draws = 8, 500

	seq := NewSource(42)
	want := make([]float64, 0, workers*draws)
	for i := 0; i < workers*draws; i++ {
		want = append(want, seq.Float64())
	}

	// same seed: concurrent draws are a permutation of the sequential stream
	shared := NewSource(42)
	results := make(chan []float64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := make([]float64, 0, draws)
			for i := 0; i < draws; i++ {
				got = append(got, shared.Float64())
			}
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	var got []float64
	for r := range results {
		got = append(got, r...)
	}
	sort.Float64s(got)
	sort.Float64s(want)
	if len(got) != len(want) {
		t.Fatalf("draws=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("concurrent draws diverged from the seeded stream at %d", i)
		}
	}
}

func TestRandomMoveConcurrent(t *testing.T) {
	src := NewSource(7)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if m := RandomMove(src); !m.Valid() {
					t.Errorf("invalid move %q", m)
					return
				}
				_ = DefaultDifficulty().ShouldFollow(TierHard, src)
			}
		}()
	}
	wg.Wait()
}
