package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Garsondee/battlescape/internal/ai"
	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/config"
	"github.com/Garsondee/battlescape/internal/savestate"
	"github.com/Garsondee/battlescape/internal/scenario"
)

type runStats struct {
	runIndex int
	seed     int64
	turns    int
	winner   string

	playerTotal, playerOut   int
	hostileTotal, hostileOut int
	neutralTotal, neutralOut int

	firstContactTurn int
	firstShotTurn    int
	firstOutTurn     int

	shots      int
	reactions  int
	throws     int
	explosions int
	chained    int
	fires      int
	destroyed  int
	interrupts int
	modes      map[ai.Mode]int

	saveID string
}

func main() {
	var runs int
	var turns int
	var seedBase int64
	var seedStep int64
	var scenarioRef string
	var configPath string
	var debug bool
	var save bool

	flag.IntVar(&runs, "runs", 5, "number of headless battles")
	flag.IntVar(&turns, "turns", 20, "max turns per battle")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenarioRef, "scenario", "skirmish", "built-in scenario name or path to a .yaml file")
	flag.StringVar(&configPath, "config", "configs/battle.yaml", "battle settings file")
	flag.BoolVar(&debug, "debug", false, "debug logging")
	flag.BoolVar(&save, "save", false, "store each final battle state in the save database")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}
	if turns <= 0 {
		fmt.Println("error: -turns must be > 0")
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(debug || cfg.Log.Debug)
	defer func() { _ = log.Sync() }()

	sc, err := scenario.Resolve(scenarioRef)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(2)
	}

	var store *savestate.Store
	if save {
		store, err = savestate.Open(cfg.Save.DSN, log)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("scenario=%s runs=%d turns=%d seed_base=%d seed_step=%d\n\n", sc.Name, runs, turns, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs, err := runBattle(context.Background(), sc, cfg, log, store, i+1, seed, turns)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			os.Exit(1)
		}
		all = append(all, rs)
		printRun(rs)
	}

	printAggregate(all)
}

func newLogger(debug bool) *zap.Logger {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func runBattle(ctx context.Context, sc *scenario.File, cfg *config.Config, log *zap.Logger, store *savestate.Store, runIndex int, seed int64, turns int) (runStats, error) {
	b, err := sc.Build(scenario.WithSeed(seed))
	if err != nil {
		return runStats{}, err
	}
	r := scenario.NewRunner(b, cfg, log.With(zap.Int("run", runIndex)))
	for i := 0; i < turns && !r.Over(); i++ {
		r.RunTurn()
	}

	rs := collect(r)
	rs.runIndex = runIndex
	rs.seed = seed
	if store != nil {
		id, err := store.Save(ctx, fmt.Sprintf("%s-run%d-seed%d", sc.Name, runIndex, seed), b, r.AI)
		if err != nil {
			return rs, err
		}
		rs.saveID = id
	}
	return rs, nil
}

func collect(r *scenario.Runner) runStats {
	rep := r.Report()
	entries := r.B.Log.Entries()
	return runStats{
		turns:            rep.Turn,
		winner:           rep.Winner(),
		playerTotal:      rep.Standing[battle.FactionPlayer] + rep.Casualties[battle.FactionPlayer],
		playerOut:        rep.Casualties[battle.FactionPlayer],
		hostileTotal:     rep.Standing[battle.FactionHostile] + rep.Casualties[battle.FactionHostile],
		hostileOut:       rep.Casualties[battle.FactionHostile],
		neutralTotal:     rep.Standing[battle.FactionNeutral] + rep.Casualties[battle.FactionNeutral],
		neutralOut:       rep.Casualties[battle.FactionNeutral],
		firstContactTurn: firstTurn(entries, "ai", "decision", "combat/"),
		firstShotTurn:    firstTurn(entries, "fire", "shot", ""),
		firstOutTurn:     firstTurn(entries, "unit", "out", ""),
		shots:            rep.Shots,
		reactions:        rep.Reactions,
		throws:           rep.Throws,
		explosions:       rep.Explosions,
		chained:          rep.Chained,
		fires:            rep.Fires,
		destroyed:        rep.Destroyed,
		interrupts:       rep.Interrupts,
		modes:            rep.Decisions,
	}
}

func firstTurn(entries []battle.Event, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Turn
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome: turns=%d winner=%s\n", rs.turns, rs.winner)
	fmt.Printf("casualties: player=%d/%d hostile=%d/%d neutral=%d/%d\n",
		rs.playerOut, rs.playerTotal, rs.hostileOut, rs.hostileTotal, rs.neutralOut, rs.neutralTotal)
	fmt.Printf("phase_markers: first_combat=%d first_shot=%d first_out=%d\n",
		rs.firstContactTurn, rs.firstShotTurn, rs.firstOutTurn)
	fmt.Printf("fire: shots=%d reactions=%d throws=%d\n", rs.shots, rs.reactions, rs.throws)
	fmt.Printf("terrain: explosions=%d chained=%d fires=%d destroyed=%d\n", rs.explosions, rs.chained, rs.fires, rs.destroyed)
	fmt.Printf("ai_modes: %s interrupts=%d\n", formatModes(rs.modes), rs.interrupts)
	if stale, reason := detectStalemate(rs); stale {
		fmt.Printf("stalemate: %s\n", reason)
	}
	if rs.saveID != "" {
		fmt.Printf("saved: %s\n", rs.saveID)
	}
	fmt.Println()
}

func formatModes(modes map[ai.Mode]int) string {
	parts := make([]string, 0, 4)
	for _, m := range []ai.Mode{ai.ModePatrol, ai.ModeAmbush, ai.ModeCombat, ai.ModeEscape} {
		parts = append(parts, fmt.Sprintf("%s=%d", m, modes[m]))
	}
	return strings.Join(parts, " ")
}

// detectStalemate flags battles that ran out of turns with both sides
// mostly standing and little shooting.
func detectStalemate(rs runStats) (bool, string) {
	if rs.winner != "none" || rs.playerTotal == 0 || rs.hostileTotal == 0 {
		return false, "decided"
	}
	playerLeft := float64(rs.playerTotal-rs.playerOut) / float64(rs.playerTotal)
	hostileLeft := float64(rs.hostileTotal-rs.hostileOut) / float64(rs.hostileTotal)
	if playerLeft < 0.5 || hostileLeft < 0.5 {
		return false, "attrition"
	}
	var reasons []string
	reasons = append(reasons, "high_mutual_survival")
	if rs.turns > 0 && float64(rs.shots)/float64(rs.turns) < 1 {
		reasons = append(reasons, "few_shots")
	}
	if rs.firstContactTurn < 0 {
		reasons = append(reasons, "no_contact")
	}
	return true, strings.Join(reasons, ",")
}

func printAggregate(all []runStats) {
	wins := map[string]int{}
	totalTurns := 0
	totalShots := 0
	totalExplosions := 0
	totalFires := 0
	totalPlayerOut := 0
	totalHostileOut := 0
	stalemates := 0
	modes := map[ai.Mode]int{}
	shotTurns := make([]int, 0, len(all))
	outTurns := make([]int, 0, len(all))

	for _, rs := range all {
		wins[rs.winner]++
		totalTurns += rs.turns
		totalShots += rs.shots
		totalExplosions += rs.explosions
		totalFires += rs.fires
		totalPlayerOut += rs.playerOut
		totalHostileOut += rs.hostileOut
		if stale, _ := detectStalemate(rs); stale {
			stalemates++
		}
		for m, n := range rs.modes {
			modes[m] += n
		}
		if rs.firstShotTurn >= 0 {
			shotTurns = append(shotTurns, rs.firstShotTurn)
		}
		if rs.firstOutTurn >= 0 {
			outTurns = append(outTurns, rs.firstOutTurn)
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d stalemates=%d\n", len(all), stalemates)
	fmt.Printf("wins: %s\n", joinCounts(wins))
	fmt.Printf("avg_per_run: turns=%.1f shots=%.1f explosions=%.1f fires=%.1f player_out=%.1f hostile_out=%.1f\n",
		avg(totalTurns, len(all)), avg(totalShots, len(all)), avg(totalExplosions, len(all)), avg(totalFires, len(all)),
		avg(totalPlayerOut, len(all)), avg(totalHostileOut, len(all)))
	fmt.Printf("phase_marker_avg_turns: first_shot=%s first_out=%s\n", avgTurnString(shotTurns), avgTurnString(outTurns))
	fmt.Printf("ai_modes_total: %s\n", formatModes(modes))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTurnString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
