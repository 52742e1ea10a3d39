package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/estimator"
	"github.com/hyeonso/EnhanceBot_Go/internal/extractor"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
)

const (
	userName = "호박"
	botName  = "플레이봇"
)

func chatMsg(minOffset, seq int, text string) domain.Message {
	return domain.Message{
		Timestamp: time.Date(2026, 1, 9, 14, 0, 0, 0, time.UTC).Add(time.Duration(minOffset) * time.Minute),
		Seq:       seq,
		Sender:    botName,
		Text:      text,
	}
}

func scenarioBook() *itembook.Book {
	bronze := domain.NewItem(1, "청동 검")
	one := 1
	bronze.TreeID = &one
	worn := domain.NewItem(0, "낡은 검")
	worn.TreeID = &one

	return itembook.NewStaticWithHierarchies(
		map[itembook.Key]itembook.IDSet{
			{Name: "낡은 검", Level: 0}: itembook.NewIDSet(1),
			{Name: "청동 검", Level: 1}: itembook.NewIDSet(1),
		},
		itembook.IDSet{},
		map[int]itembook.Hierarchy{
			1: {ID: 1, ByLevel: map[int]domain.Item{0: worn, 1: bronze}},
		},
	)
}

// Full run over the canonical four-event session: success to +1, keep at +1,
// break merged with its notice, then selling the granted replacement.
func TestRunEndToEnd(t *testing.T) {
	msgs := []domain.Message{
		chatMsg(0, 0, "⚔️ 강화 성공 ⚔️\n+0 → +1\n획득 검 : [+1] 청동 검\n사용 골드 : - 10G\n남은 골드 : 90G"),
		chatMsg(1, 0, "🛡️ 강화 유지 🛡️\n『 [+1] 청동 검 』의 레벨이 유지되었습니다.\n사용 골드 : - 20G\n남은 골드 : 70G"),
		chatMsg(2, 0, "💥 강화 파괴 💥\n사용 골드 : - 20G\n남은 골드 : 50G"),
		chatMsg(2, 1, "『 [+1] 청동 검 』 산산조각이 났습니다...\n『 [+0] 낡은 검 』 지급"),
		chatMsg(3, 0, "💰 검 판매 💰\n'[+0] 낡은 검'을(를) 판매했습니다.\n획득 골드 : + 5G\n현재 보유 골드 : 55G"),
	}

	svc := NewService(extractor.New(userName, botName, "매크로", 0), scenarioBook())

	opts := DefaultRunOptions()
	opts.Gate = estimator.Gate{MinN: 1, MaxBreakHalfwidth: 1}

	res, err := svc.Run(context.Background(), msgs, opts)
	require.NoError(t, err)
	require.Len(t, res.Events, 4)

	// Level 0 saw the one successful attempt; level 1 the keep and the break.
	assert.Equal(t, domain.EnhanceCounts{N: 1, Success: 1}, res.Tables.ByLevel[0])
	assert.Equal(t, domain.EnhanceCounts{N: 2, Keep: 1, Break: 1}, res.Tables.ByLevel[1])

	assert.Equal(t, 10, res.Tables.UpgradeCost[0])
	assert.Equal(t, 20, res.Tables.UpgradeCost[1])

	// With pk = pb = 0.5 and cost 20, enhancing at +1 is worth -40 against a
	// sell floor of 0.
	require.Greater(t, len(res.Decisions), 1)
	d1 := res.Decisions[1]
	assert.Equal(t, 1, d1.Level)
	assert.Equal(t, domain.ActionSell, d1.Action)
	assert.InDelta(t, -40, d1.VEnhance, 1e-9)
	assert.InDelta(t, 0.5, d1.PK, 1e-9)
	assert.InDelta(t, 0.5, d1.PB, 1e-9)

	assert.Equal(t, 4, res.ResolveSummary.Considered)
	assert.GreaterOrEqual(t, res.ResolveSummary.Resolved, 3)

	require.NotNil(t, res.Snapshot.Gold)
	assert.Equal(t, 55, *res.Snapshot.Gold)
}

func TestRunCostMismatchFailsRun(t *testing.T) {
	msgs := []domain.Message{
		chatMsg(0, 0, "🛡️ 강화 유지 🛡️\n『 [+1] 청동 검 』의 레벨이 유지되었습니다.\n사용 골드 : - 20G\n남은 골드 : 70G"),
		chatMsg(1, 0, "🛡️ 강화 유지 🛡️\n『 [+1] 청동 검 』의 레벨이 유지되었습니다.\n사용 골드 : - 25G\n남은 골드 : 45G"),
	}

	svc := NewService(extractor.New(userName, botName, "매크로", 0), scenarioBook())

	_, err := svc.Run(context.Background(), msgs, DefaultRunOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCostMismatch)
}

func TestRunEmptyTranscript(t *testing.T) {
	svc := NewService(extractor.New(userName, botName, "매크로", 0), scenarioBook())

	res, err := svc.Run(context.Background(), nil, DefaultRunOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Tables.ByLevel)
	// The solver still emits a full decision ladder from fallbacks.
	assert.NotEmpty(t, res.Decisions)
	assert.Nil(t, res.Snapshot.Gold)
}
