package extractor

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/metrics"
)

// DefaultLookaheadMax bounds how many subsequent bot messages are peeked at
// when merging a break with its shatter notice.
const DefaultLookaheadMax = 3

// insufficientGoldLookahead bounds the peek for the "go earn gold" guidance
// message following an insufficient-gold reply.
const insufficientGoldLookahead = 2

// Extractor reconstructs typed game events and user commands from a
// normalized chat transcript.
type Extractor struct {
	userName     string
	botName      string
	macroName    string
	lookaheadMax int
}

// Result holds the three ordered output sequences of one extraction pass.
type Result struct {
	Events        []domain.GameEvent
	BotCommands   []domain.UserCommand
	MacroCommands []domain.UserCommand
}

// New creates an extractor for the given chat identities. lookaheadMax <= 0
// selects the default break-notice window.
func New(userName, botName, macroName string, lookaheadMax int) *Extractor {
	if macroName == "" {
		macroName = "매크로"
	}
	if lookaheadMax <= 0 {
		lookaheadMax = DefaultLookaheadMax
	}
	return &Extractor{
		userName:     userName,
		botName:      botName,
		macroName:    macroName,
		lookaheadMax: lookaheadMax,
	}
}

// scanState is the single piece of mutable state threaded through the scan:
// the last item the addressed bot is known to hold.
type scanState struct {
	currentItem *domain.Item
}

// Extract runs a single forward scan over the messages in (timestamp, seq)
// order. Messages matching no recognized pattern are skipped; no UNKNOWN
// event kind exists.
func (e *Extractor) Extract(msgs []domain.Message) Result {
	ordered := make([]domain.Message, len(msgs))
	copy(ordered, msgs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	var res Result
	st := scanState{}

	for i := range ordered {
		msg := ordered[i]
		metrics.MessagesScanned.Inc()

		// Chat exports arrive in mixed composition forms; normalize before
		// any pattern matching.
		text := norm.NFC.String(msg.Text)

		if msg.Sender == e.userName {
			if cmd, ok := e.parseUserCommand(text, msg); ok {
				switch cmd.Target {
				case domain.TargetBot:
					res.BotCommands = append(res.BotCommands, cmd)
				case domain.TargetMacro:
					res.MacroCommands = append(res.MacroCommands, cmd)
				}
				metrics.UserCommands.WithLabelValues(string(cmd.Target)).Inc()
			}
			continue
		}

		if msg.Sender != e.botName {
			continue
		}

		if ev, ok := e.parseBotMessage(text, msg, ordered, i, &st); ok {
			res.Events = append(res.Events, ev)
			metrics.EventsExtracted.WithLabelValues(string(ev.Type)).Inc()
		}
	}

	return res
}

// parseBotMessage applies the event rules in priority order and stops at the
// first match. Returns false when the message produces no event.
func (e *Extractor) parseBotMessage(text string, msg domain.Message, ordered []domain.Message, i int, st *scanState) (domain.GameEvent, bool) {
	cost, goldAfter, reward := extractAmounts(text)

	// 1) BUSY: no state change.
	if reBusy.MatchString(text) {
		return domain.GameEvent{
			Type:      domain.EventBusy,
			RawMain:   text,
			Timestamp: msg.Timestamp,
		}, true
	}

	// 2) INSUFFICIENT_GOLD: the remaining-gold figure rides in GoldAfter;
	// the guidance follow-up is attached as aux without being consumed.
	if reNoGold.MatchString(text) {
		var left *int
		if m := reLeftGold.FindStringSubmatch(text); m != nil {
			left = parseAmount(m[1])
		}

		aux := e.peekBotMessage(ordered, i, insufficientGoldLookahead, func(cand string) bool {
			return reGoEarnGold.MatchString(cand)
		})

		return domain.GameEvent{
			Type:      domain.EventInsufficientGold,
			GoldAfter: left,
			RawMain:   text,
			RawAux:    aux,
			Timestamp: msg.Timestamp,
		}, true
	}

	// 3) SELL: sold item from the quoted token, else the carried state; the
	// replacement item (when announced) becomes the new state.
	if reSell.MatchString(text) {
		sold, newItem := parseSellItems(text)

		before := sold
		if before == nil {
			before = st.currentItem
		}
		if newItem != nil {
			st.currentItem = newItem
		}

		return domain.GameEvent{
			Type:       domain.EventSell,
			GoldAfter:  goldAfter,
			Reward:     reward,
			ItemBefore: before,
			ItemAfter:  newItem,
			RawMain:    text,
			Timestamp:  msg.Timestamp,
		}, true
	}

	// 4) ENHANCE_SUCCESS: requires the explicit gained-item line; without it
	// the whole message is dropped rather than guessed at.
	if mh := reSuccessHeader.FindStringSubmatch(text); mh != nil {
		beforeLevel, _ := strconv.Atoi(mh[1])

		after := parseGainItem(text)
		if after == nil {
			return domain.GameEvent{}, false
		}

		// Before-item comes from state only when the level matches the
		// header; never fabricated by decrementing the after-item.
		var before *domain.Item
		if st.currentItem != nil && st.currentItem.Level == beforeLevel {
			before = st.currentItem
		}

		st.currentItem = after

		return domain.GameEvent{
			Type:       domain.EventEnhanceSuccess,
			GoldAfter:  goldAfter,
			Cost:       cost,
			ItemBefore: before,
			ItemAfter:  after,
			RawMain:    text,
			Timestamp:  msg.Timestamp,
		}, true
	}

	// 5) ENHANCE_KEEP: before == after == the maintained item; state synced.
	if reKeep.MatchString(text) {
		keep := parseKeepItem(text)
		if keep == nil {
			keep = st.currentItem
		}
		if keep != nil {
			st.currentItem = keep
		}

		return domain.GameEvent{
			Type:       domain.EventEnhanceKeep,
			GoldAfter:  goldAfter,
			Cost:       cost,
			ItemBefore: keep,
			ItemAfter:  keep,
			RawMain:    text,
			Timestamp:  msg.Timestamp,
		}, true
	}

	// 6) ENHANCE_BREAK: only emitted when the shattered→granted notice is
	// found in the lookahead window; unmerged breaks are unattributable and
	// dropped.
	if reBreak.MatchString(text) {
		var broken, granted *domain.Item
		aux := e.peekBotMessage(ordered, i, e.lookaheadMax, func(cand string) bool {
			b, g := parseBreakNotice(cand)
			if b == nil || g == nil {
				return false
			}
			broken, granted = b, g
			return true
		})

		if broken == nil || granted == nil {
			metrics.BreaksDropped.Inc()
			return domain.GameEvent{}, false
		}

		st.currentItem = granted

		return domain.GameEvent{
			Type:       domain.EventEnhanceBreak,
			GoldAfter:  goldAfter,
			Cost:       cost,
			ItemBefore: broken,
			ItemAfter:  granted,
			RawMain:    text,
			RawAux:     aux,
			Timestamp:  msg.Timestamp,
		}, true
	}

	// 7) Everything else from the bot is ignored.
	return domain.GameEvent{}, false
}

// peekBotMessage scans up to window subsequent messages for a bot message
// matching the predicate, stopping at the first non-bot sender. The matched
// message is returned but NOT consumed: it stays in the stream and may not
// itself start another event only by virtue of never matching a primary
// pattern.
func (e *Extractor) peekBotMessage(ordered []domain.Message, i, window int, match func(string) bool) string {
	for j := i + 1; j <= i+window && j < len(ordered); j++ {
		if ordered[j].Sender != e.botName {
			break
		}
		cand := norm.NFC.String(ordered[j].Text)
		if match(cand) {
			return cand
		}
	}
	return ""
}

func (e *Extractor) parseUserCommand(text string, msg domain.Message) (domain.UserCommand, bool) {
	raw := strings.TrimSpace(text)
	m := reMention.FindStringSubmatch(raw)
	if m == nil {
		return domain.UserCommand{}, false
	}

	target := strings.TrimSpace(m[1])
	rest := strings.TrimSpace(m[2])

	if target == e.macroName {
		action := domain.MacroNone
		switch rest {
		case macroVerbPause:
			action = domain.MacroPause
		case macroVerbResume:
			action = domain.MacroResume
		case macroVerbExit:
			action = domain.MacroExit
		}
		return domain.UserCommand{
			Target:      domain.TargetMacro,
			Raw:         raw,
			MacroAction: action,
			Timestamp:   msg.Timestamp,
		}, true
	}

	if target == e.botName {
		return domain.UserCommand{
			Target:     domain.TargetBot,
			Raw:        raw,
			BotCommand: rest,
			Timestamp:  msg.Timestamp,
		}, true
	}

	return domain.UserCommand{}, false
}

// extractAmounts pulls cost, remaining gold, and reward out of a message,
// each independently optional.
func extractAmounts(text string) (cost, goldAfter, reward *int) {
	if m := reCost.FindStringSubmatch(text); m != nil {
		cost = parseAmount(m[1])
	}
	if m := reGoldAfter1.FindStringSubmatch(text); m != nil {
		goldAfter = parseAmount(m[1])
	} else if m := reGoldAfter2.FindStringSubmatch(text); m != nil {
		goldAfter = parseAmount(m[1])
	}
	if m := reReward.FindStringSubmatch(text); m != nil {
		reward = parseAmount(m[1])
	}
	return cost, goldAfter, reward
}

// parseAmount converts a comma-grouped gold figure ("1,234") to an int.
func parseAmount(s string) *int {
	v, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return nil
	}
	return &v
}

func parseGainItem(text string) *domain.Item {
	m := reSuccessGain.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return itemFromMatch(m[1], m[2])
}

func parseKeepItem(text string) *domain.Item {
	m := reKeepLine.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return itemFromMatch(m[1], m[2])
}

func parseBreakNotice(text string) (broken, granted *domain.Item) {
	m := reBreakNotice.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	return itemFromMatch(m[1], m[2]), itemFromMatch(m[3], m[4])
}

func parseSellItems(text string) (sold, newItem *domain.Item) {
	if m := reSellSold.FindStringSubmatch(text); m != nil {
		sold = itemFromMatch(m[1], m[2])
	}
	if m := reSellNew.FindStringSubmatch(text); m != nil {
		newItem = itemFromMatch(m[1], m[2])
	}
	return sold, newItem
}

func itemFromMatch(levelStr, name string) *domain.Item {
	level, err := strconv.Atoi(levelStr)
	if err != nil {
		return nil
	}
	item := domain.NewItem(level, strings.TrimSpace(name))
	return &item
}
