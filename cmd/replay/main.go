// Command replay feeds a recorded snapshot stream back through the
// automation engine and prints every action it would have sent. Useful for
// debugging a policy against a finished game without a server.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tycoon.gg/internal/auto"
	"tycoon.gg/internal/game"
	persistlog "tycoon.gg/internal/persistence/log"
	"tycoon.gg/internal/protocol"
)

// replayClock is advanced manually between snapshots so debounce and settle
// delays behave exactly as they would live.
type replayClock struct {
	now time.Time
}

func (c *replayClock) Now() time.Time { return c.now }

func main() {
	var (
		snapDir  = flag.String("snapshots", "", "directory containing snapshots-*.jsonl.zst")
		player   = flag.String("name", "", "player to replay decisions for (required)")
		stepMs   = flag.Int("step_ms", 250, "simulated time between snapshots")
		fromTurn = flag.Int("from_turn", 0, "skip snapshots before this turn")
		toTurn   = flag.Int("to_turn", 0, "stop after this turn (0 = no limit)")

		autoRoll     = flag.Bool("auto_roll", true, "enable auto roll")
		autoBuy      = flag.Bool("auto_buy", true, "enable auto buy")
		autoEnd      = flag.Bool("auto_end", true, "enable auto end turn")
		autoBuild    = flag.Bool("auto_build", true, "enable auto build houses")
		autoMortgage = flag.Bool("auto_mortgage", true, "enable auto mortgage rescue")
		autoSpread   = flag.Bool("auto_spread", true, "spread houses evenly")
		minCashKeep  = flag.Int("min_cash_keep", 0, "cash floor for buy/build")
	)
	flag.Parse()

	if *snapDir == "" || *player == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshots or -name")
		os.Exit(2)
	}

	files, err := listSnapshotFiles(*snapDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list snapshots:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no snapshot files found in", *snapDir)
		os.Exit(1)
	}

	clock := &replayClock{now: time.Unix(0, 0).UTC()}
	engine := auto.New(auto.Config{
		Player: *player,
		Policy: auto.Policy{
			AutoRoll:         *autoRoll,
			AutoBuy:          *autoBuy,
			AutoEnd:          *autoEnd,
			AutoBuildHouses:  *autoBuild,
			AutoMortgage:     *autoMortgage,
			AutoSpreadHouses: *autoSpread,
			MinCashKeep:      *minCashKeep,
			CostRule:         auto.CostAny,
		},
		Clock: clock,
	})

	step := time.Duration(*stepMs) * time.Millisecond
	var snapshots, actions uint64

	reader := persistlog.NewSnapshotReader(files)
	err = reader.Each(func(msg *protocol.StateMsg) error {
		if msg.Turn < *fromTurn {
			return nil
		}
		if *toTurn != 0 && msg.Turn > *toTurn {
			return io.EOF
		}
		snapshots++
		snap := game.NewSnapshot(msg)
		report(&actions, msg, engine.OnSnapshot(snap))

		// Let any armed delay elapse before the next snapshot arrives, the
		// way a quiet server period would.
		for {
			next := engine.NextWake()
			if next.IsZero() || next.After(clock.now.Add(step)) {
				break
			}
			clock.now = next
			report(&actions, msg, engine.Revisit())
		}
		clock.now = clock.now.Add(step)
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}

	fmt.Printf("replay ok: snapshots=%d actions=%d stuck=%v\n", snapshots, actions, engine.Stuck())
}

func report(actions *uint64, msg *protocol.StateMsg, act *protocol.Action) {
	if act == nil {
		return
	}
	*actions++
	fmt.Printf("turn=%d version=%d %s pos=%d\n", msg.Turn, msg.Version, act.Type, act.Position)
}

func listSnapshotFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "snapshots-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
