package extractor

import "regexp"

// Chat patterns for the live game's Korean reply strings. Kept together so a
// game text change is a one-file fix.
var (
	// gold/cost/reward
	reCost       = regexp.MustCompile(`사용 골드\s*:\s*-\s*([\d,]+)G`)
	reGoldAfter1 = regexp.MustCompile(`남은 골드\s*:\s*([\d,]+)G`)
	reGoldAfter2 = regexp.MustCompile(`현재 보유 골드\s*:\s*([\d,]+)G`)
	reReward     = regexp.MustCompile(`획득 골드\s*:\s*\+\s*([\d,]+)G`)

	// enhance success: header "+a → +b" plus the gained-item line
	reSuccessHeader = regexp.MustCompile(`강화 성공[\s\S]*?\+(\d+)\s*→\s*\+(\d+)`)
	reSuccessGain   = regexp.MustCompile(`획득\s*검\s*:\s*\[\+(\d+)\]\s*([^\n\r]+)`)

	// enhance keep
	reKeep     = regexp.MustCompile(`강화 유지`)
	reKeepLine = regexp.MustCompile(`『\s*\[\+(\d+)\]\s*([^\]』]+?)\s*』[\s\S]*?레벨이 유지`)

	// enhance break (main message) and the shattered→granted notice (aux)
	reBreak       = regexp.MustCompile(`강화 파괴`)
	reBreakNotice = regexp.MustCompile(`『\s*\[\+(\d+)\]\s*([^\]』]+?)\s*』\s*산산조각[\s\S]*?『\s*\[\+(\d+)\]\s*([^\]』]+?)\s*』\s*지급`)

	// sell
	reSell     = regexp.MustCompile(`검 판매`)
	reSellSold = regexp.MustCompile(`'\s*\[\+(\d+)\]\s*([^']+?)\s*'`)
	reSellNew  = regexp.MustCompile(`새로운\s*검\s*획득\s*:\s*\[\+(\d+)\]\s*([^\n\r]+)`)

	// busy
	reBusy = regexp.MustCompile(`강화 중이니\s*잠깐\s*기다리도록`)

	// insufficient gold (first message) and the guidance follow-up (aux)
	reNoGold     = regexp.MustCompile(`골드가\s*부족해`)
	reLeftGold   = regexp.MustCompile(`남은\s*골드\s*:\s*([\d,]+)G`)
	reGoEarnGold = regexp.MustCompile(`골드\s*모으러가기|출석체크|검\s*'판매'`)

	// user mention: "@target rest"
	reMention = regexp.MustCompile(`^\s*@(\S+)\s*([\s\S]*?)\s*$`)
)

// Macro control verbs the operator types after "@매크로".
const (
	macroVerbPause  = "중지"
	macroVerbResume = "재개"
	macroVerbExit   = "종료"
)
