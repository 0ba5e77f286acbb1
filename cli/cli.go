// Package cli provides the line-oriented driver for talking to NPCs from a
// terminal or a script file.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/store"
	"github.com/nathoo/parley/types"
)

// Clock is a wall clock that can be pushed forward, so scripts can let
// quest timers run out without waiting.
type Clock struct {
	mu     sync.Mutex
	base   func() time.Time
	offset time.Duration
}

// NewClock wraps base; nil means time.Now.
func NewClock(base func() time.Time) *Clock {
	if base == nil {
		base = time.Now
	}
	return &Clock{base: base}
}

// Now returns the base time plus every advance so far.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base().Add(c.offset)
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.offset += d
	c.mu.Unlock()
}

// CLI handles terminal interaction with the player.
type CLI struct {
	World     *engine.World
	Store     store.PlayerStore
	Clock     *Clock
	Player    *state.Player
	Title     string
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	npc     string // who the player is talking to
	lastCmd string // for "again"/"g" repeat
}

// New creates a CLI wired to the given world. The player starts as "hero".
func New(w *engine.World, st store.PlayerStore, clock *Clock) *CLI {
	return &CLI{
		World:  w,
		Store:  st,
		Clock:  clock,
		Player: state.NewPlayer("hero", 1),
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run loops: prompt, input, dispatch, output.
func (c *CLI) Run(ctx context.Context) {
	if c.Title != "" {
		c.printLine(c.Title)
		c.printLine("")
	}
	c.printSystem(fmt.Sprintf("You are %s. Use /talk <npc> to start a conversation.", c.Player.Name()))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.say(ctx, input)
	}
}

func (c *CLI) say(ctx context.Context, text string) {
	if c.npc == "" {
		c.printSystem("You are not talking to anyone. Use /talk <npc>.")
		return
	}
	result, err := c.World.Say(ctx, c.Player, c.npc, text)
	if err != nil {
		c.printSystem(err.Error())
		return
	}
	c.printResult(result)
	if c.Trace {
		c.printTrace(result)
	}
}

// handleMeta dispatches meta-commands. Returns true if the loop should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	arg := strings.TrimSpace(strings.TrimPrefix(input, cmd))

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/talk":
		c.cmdTalk(arg)

	case "/npcs":
		c.printSystem(strings.Join(c.World.NPCs.Names(), ", "))

	case "/player":
		c.cmdPlayer(ctx, arg)

	case "/level":
		c.cmdLevel(arg)

	case "/inv":
		c.cmdInventory()

	case "/quests":
		c.cmdQuests()

	case "/state":
		c.cmdState()

	case "/save":
		c.cmdSave(ctx)

	case "/load":
		c.cmdLoad(ctx, arg)

	case "/advance":
		c.cmdAdvance(arg)

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdTalk(name string) {
	if name == "" {
		c.printSystem("Usage: /talk <npc>")
		return
	}
	npc, err := c.World.NPCs.Get(name)
	if err != nil {
		c.printSystem(fmt.Sprintf("There is nobody called %s here.", name))
		return
	}
	c.npc = npc.Name()
	c.printSystem(fmt.Sprintf("You are talking to %s.", c.npc))
}

func (c *CLI) cmdPlayer(ctx context.Context, name string) {
	if name == "" {
		c.printSystem(fmt.Sprintf("You are %s.", c.Player.Name()))
		return
	}
	c.SwitchPlayer(ctx, name)
}

// SwitchPlayer continues as a stored player, or creates a new level 1 player
// when none is stored under name.
func (c *CLI) SwitchPlayer(ctx context.Context, name string) {
	p, err := c.Store.Load(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.Player = state.NewPlayer(name, 1)
		c.printSystem(fmt.Sprintf("New player %s.", name))
	case err != nil:
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
	default:
		c.Player = p
		c.printSystem(fmt.Sprintf("Welcome back, %s.", p.Name()))
	}
}

func (c *CLI) cmdLevel(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		c.printSystem("Usage: /level <n>")
		return
	}
	c.Player.SetLevel(n)
	c.printSystem(fmt.Sprintf("Level set to %d.", n))
}

func (c *CLI) cmdInventory() {
	empty := true
	for _, slot := range c.Player.Slots() {
		for _, it := range slot.Items {
			empty = false
			c.printLine(fmt.Sprintf("  %-6s %s x%d", slot.Name, it.Name, state.Quantity(it)))
		}
	}
	if empty {
		c.printSystem("You carry nothing.")
	}
}

func (c *CLI) cmdQuests() {
	h := c.World.History(c.Player)
	if len(h) == 0 {
		c.printSystem("No quests yet.")
		return
	}
	for _, slot := range engine.HistorySlots(h) {
		title := slot
		if q, ok := c.World.Quest(slot); ok && q.Info().Name != "" {
			title = q.Info().Name
		}
		c.printLine(title + ":")
		for _, line := range h[slot] {
			c.printLine("  " + line)
		}
	}
}

func (c *CLI) cmdState() {
	p := c.Player
	c.printSystem(fmt.Sprintf("Player: %s (level %d, xp %d, hp %d/%d)", p.Name(), p.Level(), p.XP(), p.HP(), p.BaseHP()))
	c.printSystem(fmt.Sprintf("Time: %s", c.Clock.Now().Format(time.RFC3339)))
	if c.npc != "" {
		c.printSystem(fmt.Sprintf("Talking to: %s", c.npc))
	}
	slots := p.QuestSlots()
	if len(slots) > 0 {
		names := make([]string, 0, len(slots))
		for name := range slots {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.printSystem(fmt.Sprintf("Quest %s: %s", name, slots[name]))
		}
	}
}

func (c *CLI) cmdSave(ctx context.Context) {
	if err := c.Store.Save(ctx, c.Player); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Saved %s.", c.Player.Name()))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if name == "" {
		name = c.Player.Name()
	}
	p, err := c.Store.Load(ctx, name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.Player = p
	c.printSystem(fmt.Sprintf("Loaded %s.", p.Name()))
}

func (c *CLI) cmdAdvance(arg string) {
	d, err := time.ParseDuration(arg)
	if err != nil || d <= 0 {
		c.printSystem("Usage: /advance <duration>, e.g. /advance 15m")
		return
	}
	c.Clock.Advance(d)
	c.printSystem(fmt.Sprintf("%s pass.", d))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /talk <npc>       Talk to someone",
		"  /npcs             List everyone you can talk to",
		"  /player [name]    Switch to a stored or new player",
		"  /level <n>        Set the player's level",
		"  /inv              Show what you carry",
		"  /quests           Show your quest journal",
		"  /state            Debug: dump the player",
		"  /save             Save the player",
		"  /load [name]      Load a saved player",
		"  /advance <dur>    Let time pass, e.g. 15m",
		"  /trace            Toggle debug trace output",
		"  /help             Show this help",
		"  /quit             Exit",
		"",
		"Anything else is said to the NPC you are talking to:",
		"  hi, job, help, offer, quest, buy 2 flasks, sell sword, heal, yes, no, bye",
		"  again (g)         Repeat what you last said",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printTrace(result types.Result) {
	c.printSystem(fmt.Sprintf("[trace] State: %s", stateName(result.State)))
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
}

func stateName(s types.ConversationState) string {
	switch s {
	case types.StateIdle:
		return "idle"
	case types.StateAttending:
		return "attending"
	case types.StateQuestOffered:
		return "quest offered"
	case types.StateSellPriceOffered:
		return "sell price offered"
	case types.StateBuyPriceOffered:
		return "buy price offered"
	case types.StateHealOffered:
		return "heal offered"
	}
	return strconv.Itoa(int(s))
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(fmt.Sprintf("%s: %s", c.npc, line))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
